package bridge

// RequestQueue is the bounded FIFO buffer of requests waiting for the active
// slot. Insertion order is the fairness guarantee: requests are promoted in
// exactly the order they were accepted.
type RequestQueue struct {
	items    []RequestData
	capacity int
}

func NewRequestQueue(capacity int) *RequestQueue {
	return &RequestQueue{capacity: capacity}
}

// Enqueue appends a request at the tail. A full queue rejects the request;
// it is never truncated.
func (q *RequestQueue) Enqueue(req RequestData) error {
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, req)
	return nil
}

// Dequeue removes and returns the head of the queue.
func (q *RequestQueue) Dequeue() (RequestData, bool) {
	if len(q.items) == 0 {
		return RequestData{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *RequestQueue) Len() int {
	return len(q.items)
}

func (q *RequestQueue) Full() bool {
	return len(q.items) >= q.capacity
}

// Items returns a copy of the queued requests, head first.
func (q *RequestQueue) Items() []RequestData {
	return append([]RequestData(nil), q.items...)
}

func (q *RequestQueue) restore(items []RequestData) {
	q.items = append([]RequestData(nil), items...)
}
