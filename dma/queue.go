package dma

// Queue is a bounded FIFO of transactions. Only the head transaction
// is ever in flight, so completions leave in arrival order.
type Queue struct {
	name string
	cap  int
	txns []*Transaction
}

// NewQueue builds a queue with the given capacity.
func NewQueue(name string, capacity int) *Queue {
	return &Queue{name: name, cap: capacity}
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

// Push appends a transaction; false when the queue is full.
func (q *Queue) Push(t *Transaction) bool {
	if len(q.txns) >= q.cap {
		return false
	}
	q.txns = append(q.txns, t)
	return true
}

// Head returns the oldest transaction without removing it.
func (q *Queue) Head() *Transaction {
	if len(q.txns) == 0 {
		return nil
	}
	return q.txns[0]
}

// Pop removes and returns the oldest transaction.
func (q *Queue) Pop() *Transaction {
	t := q.Head()
	if t != nil {
		q.txns = q.txns[1:]
	}
	return t
}

// Depth reports how many transactions are queued.
func (q *Queue) Depth() int {
	return len(q.txns)
}

// Clear discards all queued transactions.
func (q *Queue) Clear() {
	q.txns = nil
}
