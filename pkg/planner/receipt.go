package planner

import "context"

// Receipt tracks one submitted store.
type Receipt struct {
	ID   string
	Plan string

	done chan struct{}
	err  error
}

func newReceipt(id, planName string) *Receipt {
	return &Receipt{ID: id, Plan: planName, done: make(chan struct{})}
}

// FinishedReceipt returns a receipt that has already completed with err.
// Storers that finish synchronously hand it back from StoreFile.
func FinishedReceipt(id, planName string, err error) *Receipt {
	r := newReceipt(id, planName)
	r.finish(err)
	return r
}

func (r *Receipt) finish(err error) {
	r.err = err
	close(r.done)
}

// Done is closed once the store has finished, successfully or not.
func (r *Receipt) Done() <-chan struct{} { return r.done }

// Err returns the outcome. It is only meaningful after Done is closed.
func (r *Receipt) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the store finishes or ctx is done. A cancelled wait does
// not cancel the store.
func (r *Receipt) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
