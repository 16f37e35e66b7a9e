package bridge

import "errors"

var (
	// Request validation
	ErrEmptyFunctionName   = errors.New("bridge: empty function name")
	ErrFunctionNameInvalid = errors.New("bridge: function name contains invalid characters")
	ErrFunctionNameTooLong = errors.New("bridge: function name exceeds limit")
	ErrTooManyParams       = errors.New("bridge: parameter list exceeds limit")
	ErrTypeNameTooLong     = errors.New("bridge: parameter type name exceeds limit")
	ErrValueTooLong        = errors.New("bridge: parameter value exceeds limit")
	ErrUnknownParamType    = errors.New("bridge: unknown parameter type")
	ErrInvalidUint         = errors.New("bridge: value is not a valid unsigned integer")
	ErrInvalidBytes        = errors.New("bridge: fixed bytes value has wrong length")

	// Capacity
	ErrQueueFull                = errors.New("bridge: request queue is full")
	ErrExceedsConfirmationLimit = errors.New("bridge: confirmation limit reached")

	// Protocol state
	ErrNotActiveTransaction       = errors.New("bridge: id does not match the active transaction")
	ErrTransactionNotSubmitted    = errors.New("bridge: transaction has not been submitted to Ethereum")
	ErrNotAwaitingCorroboration   = errors.New("bridge: transaction is not awaiting corroboration")
	ErrContradictoryCorroboration = errors.New("bridge: author already corroborated the opposite outcome")
	ErrEthTxHashAlreadySet        = errors.New("bridge: ethereum transaction hash already set")
	ErrEthTxHashMustBeSetBySender = errors.New("bridge: only the sender may set the ethereum transaction hash")

	// Authentication
	ErrUnknownAuthor         = errors.New("bridge: author is not a committee member")
	ErrUnknownEthereumKey    = errors.New("bridge: no ethereum key registered for author")
	ErrInvalidSignature      = errors.New("bridge: invalid proof signature")
	ErrInvalidECDSASignature = errors.New("bridge: invalid ecdsa confirmation signature")

	// Collaborators
	ErrHandleResultFailed = errors.New("bridge: result handler rejected the outcome")
	ErrAssigningSender    = errors.New("bridge: no committee member available as sender")
)
