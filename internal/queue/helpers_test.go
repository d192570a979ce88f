package queue

import (
	"context"
	"sync"
)

type fakeContext struct {
	sync.Mutex
	errs     []error
	failedOp []Operation
	progress []uint64
	onError  func(op Operation, err error)
}

func (c *fakeContext) ReportError(op Operation, err error) {
	c.Lock()
	c.errs = append(c.errs, err)
	c.failedOp = append(c.failedOp, op)
	onError := c.onError
	c.Unlock()

	if onError != nil {
		onError(op, err)
	}
}

func (c *fakeContext) ReportProgress(bytes uint64) {
	c.Lock()
	defer c.Unlock()

	c.progress = append(c.progress, bytes)
}

func (c *fakeContext) ExecSafe(op Operation, body func(Operation) error) {
	ExecSafe(c, op, body)
}

func (c *fakeContext) AttemptRename() bool {
	return true
}

func (c *fakeContext) errors() []error {
	c.Lock()
	defer c.Unlock()

	return append([]error(nil), c.errs...)
}

type journal struct {
	sync.Mutex
	entries []string
}

func (j *journal) add(name string) {
	j.Lock()
	defer j.Unlock()

	j.entries = append(j.entries, name)
}

func (j *journal) list() []string {
	j.Lock()
	defer j.Unlock()

	return append([]string(nil), j.entries...)
}

type testOp struct {
	name     string
	journal  *journal
	children []Operation
	err      error
	panics   bool
	hook     func()
	retry    []Operation
}

func (o *testOp) Execute(_ context.Context, _ MigrationContext) ([]Operation, error) {
	o.journal.add(o.name)

	if o.hook != nil {
		o.hook()
	}

	if o.panics {
		panic("boom")
	}

	if o.err != nil {
		return nil, o.err
	}

	return o.children, nil
}

func (o *testOp) RetryOperations() []Operation {
	return o.retry
}

func (o *testOp) String() string {
	return o.name
}
