// Package queue implements the cooperative work queue which runs a migration
// as a sequence of small [Operation] steps, along with the contracts between
// operations and the policy deciding over their failures.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Operation is one small step of a migration, such as listing a directory
// or moving a single file. Any further work needed to finish the larger task
// it belongs to is returned as follow-up operations instead of being done
// in place.
type Operation interface {
	Execute(ctx context.Context, mctx MigrationContext) ([]Operation, error)

	// RetryOperations returns the operations to run instead if the unit of
	// work containing this operation needs to be retried.
	RetryOperations() []Operation
}

// MigrationContext receives the outcome of executed operations and decides
// over failures.
type MigrationContext interface {
	ReportError(op Operation, err error)
	ReportProgress(bytes uint64)

	// ExecSafe runs body with op, handing any error or panic to ReportError
	// instead of propagating it.
	ExecSafe(op Operation, body func(Operation) error)

	// AttemptRename returns whether files may be renamed instead of being
	// copied and deleted.
	AttemptRename() bool
}

// Completed is returned by an [Operation] needing no follow-up operations.
func Completed() []Operation {
	return nil
}

// ExecSafe is the guarded region shared by [MigrationContext] implementations.
// A returned error or a recovered panic of body is forwarded to
// mctx.ReportError, so that a single failing [Operation] can never abort the
// [Executor].
func ExecSafe(mctx MigrationContext, op Operation, body func(Operation) error) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("(queue) %w: %v", ErrOperationPanic, r)
			slog.Warn("Operation panicked", "op", op, "err", err)
			mctx.ReportError(op, err)
		}
	}()

	if err := body(op); err != nil {
		slog.Warn("Failed while executing operation", "op", op, "err", err)
		mctx.ReportError(op, err)
	}
}

// RetryDecorated runs Standard, but runs Retry if retried. Any
// retry operations of Standard itself are ignored.
type RetryDecorated struct {
	Standard Operation
	Retry    Operation
}

// OnRetryExecute returns op decorated to run retry when it is retried.
func OnRetryExecute(op Operation, retry Operation) *RetryDecorated {
	return &RetryDecorated{
		Standard: op,
		Retry:    retry,
	}
}

func (r *RetryDecorated) Execute(ctx context.Context, mctx MigrationContext) ([]Operation, error) {
	return r.Standard.Execute(ctx, mctx)
}

func (r *RetryDecorated) RetryOperations() []Operation {
	return []Operation{r.Retry}
}

func (r *RetryDecorated) String() string {
	return fmt.Sprintf("%v (retry: %v)", r.Standard, r.Retry)
}

// AwaitableOperation wraps an [Operation] so that another goroutine can wait
// for it to have been executed, successfully or not.
type AwaitableOperation struct {
	op   Operation
	done chan struct{}
	once sync.Once
	err  error
}

// NewAwaitableOperation returns a pointer to a new [AwaitableOperation].
func NewAwaitableOperation(op Operation) *AwaitableOperation {
	return &AwaitableOperation{
		op:   op,
		done: make(chan struct{}),
	}
}

func (a *AwaitableOperation) Execute(ctx context.Context, mctx MigrationContext) ([]Operation, error) {
	completed := false
	defer func() {
		if !completed {
			a.finish(ErrOperationPanic)
		}
	}()

	next, err := a.op.Execute(ctx, mctx)
	completed = true
	a.finish(err)

	return next, err
}

func (a *AwaitableOperation) RetryOperations() []Operation {
	return a.op.RetryOperations()
}

// Wait blocks until the wrapped [Operation] was executed, returning its
// error, or until ctx is done.
func (a *AwaitableOperation) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return fmt.Errorf("(queue-await) %w", ctx.Err())
	}
}

func (a *AwaitableOperation) String() string {
	return fmt.Sprintf("awaitable %v", a.op)
}

func (a *AwaitableOperation) abandon() {
	a.finish(ErrAbandoned)
}

func (a *AwaitableOperation) finish(err error) {
	a.once.Do(func() {
		a.err = err
		close(a.done)
	})
}
