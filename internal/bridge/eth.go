package bridge

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// abiType resolves a textual parameter type to its go-ethereum ABI type.
// Integer values travel as decimal ASCII and are parsed here, so a malformed
// value is rejected before any signature is produced over it.
func abiType(name []byte) (abi.Type, error) {
	switch string(name) {
	case "uint256":
		return abi.NewType("uint256", "", nil)
	case "uint128":
		return abi.NewType("uint128", "", nil)
	case "uint32":
		return abi.NewType("uint32", "", nil)
	case "bytes":
		return abi.NewType("bytes", "", nil)
	case "bytes32":
		return abi.NewType("bytes32", "", nil)
	default:
		return abi.Type{}, fmt.Errorf("%w: %q", ErrUnknownParamType, name)
	}
}

func abiValue(typeName, value []byte) (any, error) {
	switch string(typeName) {
	case "uint256", "uint128":
		n, ok := new(big.Int).SetString(string(value), 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUint, value)
		}
		return n, nil
	case "uint32":
		n, err := strconv.ParseUint(string(value), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUint, value)
		}
		return uint32(n), nil
	case "bytes":
		out := make([]byte, len(value))
		copy(out, value)
		return out, nil
	case "bytes32":
		if len(value) != 32 {
			return nil, fmt.Errorf("%w: bytes32 value has %d bytes", ErrInvalidBytes, len(value))
		}
		var out [32]byte
		copy(out[:], value)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParamType, typeName)
	}
}

func packParams(params []Param) ([]byte, error) {
	args := make(abi.Arguments, 0, len(params))
	values := make([]any, 0, len(params))
	for _, p := range params {
		t, err := abiType(p.Type)
		if err != nil {
			return nil, err
		}
		v, err := abiValue(p.Type, p.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, abi.Argument{Type: t})
		values = append(values, v)
	}
	return args.Pack(values...)
}

// extendParams appends the expiry and transaction id to the request params.
// Both are carried as decimal ASCII so the resulting params feed the same
// encoding path as caller-supplied values.
func extendParams(params []Param, expiry uint64, txID uint32) []Param {
	extended := cloneParams(params)
	extended = append(extended,
		Param{Type: []byte("uint256"), Value: []byte(strconv.FormatUint(expiry, 10))},
		Param{Type: []byte("uint32"), Value: []byte(strconv.FormatUint(uint64(txID), 10))},
	)
	return extended
}

// BuildMessageHash computes the 32-byte keccak-256 digest authors sign with
// their Ethereum keys. The digest covers the ABI encoding of the extended
// parameter list, so two transactions never share a hash even when their
// request params match.
func BuildMessageHash(params []Param) (common.Hash, error) {
	packed, err := packParams(params)
	if err != nil {
		return common.Hash{}, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(packed)
	var out common.Hash
	h.Sum(out[:0])
	return out, nil
}

func encodeFunctionCall(name []byte, params []Param) ([]byte, error) {
	args := make(abi.Arguments, 0, len(params))
	values := make([]any, 0, len(params))
	for _, p := range params {
		t, err := abiType(p.Type)
		if err != nil {
			return nil, err
		}
		v, err := abiValue(p.Type, p.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, abi.Argument{Type: t})
		values = append(values, v)
	}
	method := abi.NewMethod(string(name), string(name), abi.Function, "nonpayable", false, false, args, nil)
	packed, err := args.Pack(values...)
	if err != nil {
		return nil, err
	}
	return append(method.ID, packed...), nil
}

// GenerateSendCalldata builds the Ethereum calldata for dispatching the
// active transaction: the extended params followed by the collected ECDSA
// confirmations concatenated into a single bytes argument.
func GenerateSendCalldata(tx *ActiveTransaction) ([]byte, error) {
	sigs := make([]byte, 0, len(tx.Confirmations)*65)
	for _, c := range tx.Confirmations {
		sigs = append(sigs, c.Signature[:]...)
	}
	params := cloneParams(tx.EthTxParams)
	params = append(params, Param{Type: []byte("bytes"), Value: sigs})
	return encodeFunctionCall(tx.Request.FunctionName, params)
}

// GenerateCorroborateCalldata builds the calldata a validator uses to query
// the bridge contract for the outcome of a submitted transaction.
func GenerateCorroborateCalldata(txID uint32, expiry uint64) ([]byte, error) {
	params := []Param{
		{Type: []byte("uint32"), Value: []byte(strconv.FormatUint(uint64(txID), 10))},
		{Type: []byte("uint256"), Value: []byte(strconv.FormatUint(expiry, 10))},
	}
	return encodeFunctionCall([]byte("corroborate"), params)
}

// VerifyConfirmation checks that sig is a valid [R || S || V] secp256k1
// signature over msgHash recovering to the given Ethereum address.
func VerifyConfirmation(msgHash common.Hash, sig [65]byte, address [20]byte) error {
	pub, err := crypto.SigToPub(msgHash[:], sig[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidECDSASignature, err)
	}
	if crypto.PubkeyToAddress(*pub) != common.Address(address) {
		return ErrInvalidECDSASignature
	}
	return nil
}
