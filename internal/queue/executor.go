package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/juju/collections/deque"
)

type abandoner interface {
	abandon()
}

// Executor runs operations one at a time on the goroutine calling
// [Executor.Execute]. Operations passed to [Executor.Preempt] always run
// before the next operation of the main queue.
//
// Only the preempted queue and the termination flag may be used from other
// goroutines while the executor is running. Once terminated, an executor
// cannot be used again.
type Executor struct {
	mu        sync.Mutex
	preempted *deque.Deque
	running   bool

	main       *deque.Deque
	terminated atomic.Bool
}

// NewExecutor returns a pointer to a new [Executor] with empty queues.
func NewExecutor() *Executor {
	return &Executor{
		preempted: deque.New(),
		main:      deque.New(),
	}
}

// Append adds op to the back of the main queue.
func (e *Executor) Append(op Operation) {
	e.main.PushBack(op)
}

// AppendAll adds ops to the back of the main queue, in order.
func (e *Executor) AppendAll(ops []Operation) {
	for _, op := range ops {
		e.main.PushBack(op)
	}
}

// Prepend adds op to the front of the main queue.
func (e *Executor) Prepend(op Operation) {
	e.main.PushFront(op)
}

// Preempt adds op to the front of the preempted queue. It is safe for
// concurrent use and does not wait for op to be executed.
func (e *Executor) Preempt(op Operation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.preempted.PushFront(op)
}

// PreemptIfRunning is [Executor.Preempt], but only queues op if the executor
// is currently executing and guaranteed to pick it up. It returns whether op
// was queued.
func (e *Executor) PreemptIfRunning(op Operation) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || e.terminated.Load() {
		return false
	}

	e.preempted.PushFront(op)

	return true
}

// Terminate stops the executor before its next operation. It is idempotent
// and safe for concurrent use.
func (e *Executor) Terminate() {
	if e.terminated.CompareAndSwap(false, true) {
		slog.Debug("Executor terminated")
	}
}

// Terminated returns whether [Executor.Terminate] was called.
func (e *Executor) Terminated() bool {
	return e.terminated.Load()
}

// Len returns the number of queued operations. It must not be called while
// the executor is running.
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.main.Len() + e.preempted.Len()
}

// Execute runs queued operations through mctx until both queues are empty or
// the executor is terminated. Follow-up operations are queued at the front
// of the queue their parent came from, so that a unit of work is completed
// before the next one starts. A done ctx terminates the executor, its error
// is returned.
func (e *Executor) Execute(ctx context.Context, mctx MigrationContext) error {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	defer e.stop()

	for {
		if err := ctx.Err(); err != nil {
			e.Terminate()

			return fmt.Errorf("(queue) %w", err)
		}

		e.clearPreempted(ctx, mctx)

		if e.Terminated() {
			return nil
		}

		if ctx.Err() != nil {
			continue
		}

		item, ok := e.main.PopFront()
		if !ok {
			if e.finishIfIdle() {
				return nil
			}

			continue
		}

		op, _ := item.(Operation)
		e.run(ctx, mctx, op, e.prependAll)
	}
}

// clearPreempted executes preempted operations until either the preempted
// queue is empty or the executor is terminated.
func (e *Executor) clearPreempted(ctx context.Context, mctx MigrationContext) {
	for !e.Terminated() && ctx.Err() == nil {
		op, ok := e.nextPreempted()
		if !ok {
			return
		}

		slog.Debug("Executing preempted operation", "op", op)
		e.run(ctx, mctx, op, e.preemptAll)
	}
}

func (e *Executor) run(ctx context.Context, mctx MigrationContext, op Operation, requeue func([]Operation)) {
	mctx.ExecSafe(op, func(op Operation) error {
		next, err := op.Execute(ctx, mctx)
		if err != nil {
			return err
		}
		requeue(next)

		return nil
	})
}

func (e *Executor) prependAll(ops []Operation) {
	for i := len(ops) - 1; i >= 0; i-- {
		e.main.PushFront(ops[i])
	}
}

func (e *Executor) preemptAll(ops []Operation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := len(ops) - 1; i >= 0; i-- {
		e.preempted.PushFront(ops[i])
	}
}

func (e *Executor) nextPreempted() (Operation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.preempted.PopFront()
	if !ok {
		return nil, false
	}
	op, _ := item.(Operation)

	return op, true
}

// finishIfIdle marks the executor as no longer running if nothing was
// preempted in the meantime.
func (e *Executor) finishIfIdle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preempted.Len() > 0 {
		return false
	}
	e.running = false

	return true
}

// stop releases any waiters of preempted operations which will never run.
func (e *Executor) stop() {
	e.mu.Lock()
	e.running = false

	var abandoned []abandoner
	if e.Terminated() {
		for {
			item, ok := e.preempted.PopFront()
			if !ok {
				break
			}
			if a, ok := item.(abandoner); ok {
				abandoned = append(abandoned, a)
			}
		}
	}
	e.mu.Unlock()

	for _, a := range abandoned {
		a.abandon()
	}
}
