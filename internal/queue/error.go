package queue

import "errors"

var (
	// ErrOperationPanic occurs when an [Operation] panicked during execution.
	ErrOperationPanic = errors.New("operation panicked")

	// ErrAbandoned occurs when an [AwaitableOperation] was still queued when
	// its [Executor] stopped, so it will never run.
	ErrAbandoned = errors.New("operation abandoned by terminated executor")
)
