package database

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// ErrQueueClosed is returned for jobs submitted after Close.
var ErrQueueClosed = errors.New("write queue closed")

// WriteQueue linearizes every store mutation into one FIFO chain. SQLite
// does not arbitrate cross-call concurrency for us, and overlapping writers
// could interleave multi-statement transactions, so a single consumer
// goroutine owns all mutating access to the handle. A failing job reports
// only to its own caller; the chain keeps going.
type WriteQueue struct {
	db   *gorm.DB
	jobs chan writeJob

	// mu guards closed and orders every submit before the channel close:
	// Do sends while holding the read side, Close flips the flag under the
	// write side, so no send can race the close.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

type writeJob struct {
	fn   func(db *gorm.DB) error
	done chan error
}

func NewWriteQueue(db *gorm.DB) *WriteQueue {
	q := &WriteQueue{
		db:   db,
		jobs: make(chan writeJob, 256),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Do enqueues fn and blocks until it has run. Jobs execute strictly in
// enqueue order, one at a time, regardless of which goroutine submitted
// them. No priority, no cancellation.
func (q *WriteQueue) Do(fn func(db *gorm.DB) error) error {
	job := writeJob{fn: fn, done: make(chan error, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.jobs <- job
	q.mu.RUnlock()

	return <-job.done
}

// DoTx is Do with fn wrapped in a transaction.
func (q *WriteQueue) DoTx(fn func(tx *gorm.DB) error) error {
	return q.Do(func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// Close stops the consumer after the jobs already queued have run. Do
// calls racing with or following Close get ErrQueueClosed, never a panic.
func (q *WriteQueue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		// No submitter can be inside a send now; draining the channel is
		// all that is left.
		close(q.jobs)
	})
	<-q.done
}

func (q *WriteQueue) run() {
	defer close(q.done)
	for job := range q.jobs {
		job.done <- q.exec(job.fn)
	}
}

func (q *WriteQueue) exec(fn func(db *gorm.DB) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write queue job panicked: %v", r)
		}
	}()
	return fn(q.db)
}
