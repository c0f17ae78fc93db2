package tree

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlowStatus represents the current state of a scheduled flow.
type FlowStatus string

const (
	// FlowPending indicates the flow is waiting for a worker.
	FlowPending FlowStatus = "pending"
	// FlowRunning indicates the flow is currently executing.
	FlowRunning FlowStatus = "running"
	// FlowCompleted indicates the flow finished successfully.
	FlowCompleted FlowStatus = "completed"
	// FlowFailed indicates the flow returned an error or panicked.
	FlowFailed FlowStatus = "failed"
)

// Promise is the handle returned by a flow action. It resolves when the
// scheduled work completes.
type Promise struct {
	id   uuid.UUID
	done chan struct{}

	mu     sync.Mutex
	status FlowStatus
	result any
	err    error
}

func newPromise() *Promise {
	return &Promise{
		id:     uuid.New(),
		done:   make(chan struct{}),
		status: FlowPending,
	}
}

// ID returns the promise's unique identifier.
func (p *Promise) ID() uuid.UUID { return p.id }

// Status returns the promise's current state.
func (p *Promise) Status() FlowStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Done returns a channel closed when the flow completes.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Wait blocks until the flow completes or ctx is cancelled, returning the
// flow's result.
func (p *Promise) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.result, p.err
	}
}

func (p *Promise) markRunning() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == FlowPending {
		p.status = FlowRunning
	}
}

func (p *Promise) complete(result any, err error) {
	p.mu.Lock()
	if err != nil {
		p.status = FlowFailed
	} else {
		p.status = FlowCompleted
	}
	p.result = result
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// Flow wraps act so that invoking it schedules the work on the shared
// executor and returns a *Promise immediately instead of blocking. The
// runtime decides how the work is scheduled; act itself is unmodified.
func Flow(name string, act Action) Action {
	return func(args ...any) (any, error) {
		p := newPromise()
		task := Task{
			Name: name,
			Fn: func(ctx context.Context) error {
				p.markRunning()
				defer func() {
					if r := recover(); r != nil {
						p.complete(nil, fmt.Errorf("tree: flow %s panicked: %v", name, r))
					}
				}()
				out, err := act(args...)
				p.complete(out, err)
				return err
			},
		}
		if err := DefaultExecutor().Enqueue(task); err != nil {
			return nil, fmt.Errorf("tree: flow %s: %w", name, err)
		}
		return p, nil
	}
}

// Task is a unit of work scheduled on an Executor.
type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Executor runs flow tasks on a worker pool.
type Executor struct {
	tasks   chan Task
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	started  bool
	shutdown bool
}

// NewExecutor creates an executor with the given worker count and queue
// capacity. Non-positive arguments fall back to the defaults.
func NewExecutor(workers, queueSize int) *Executor {
	if workers <= 0 {
		workers = defaultFlowWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultFlowQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		tasks:   make(chan Task, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker pool. Starting twice is a no-op.
func (e *Executor) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.started = true
}

func (e *Executor) worker(id int) {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case task, ok := <-e.tasks:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						log().Error("flow task panicked",
							zap.Int("worker", id),
							zap.String("task", task.Name),
							zap.Any("panic", r))
					}
				}()
				if err := task.Fn(e.ctx); err != nil {
					log().Warn("flow task failed",
						zap.Int("worker", id),
						zap.String("task", task.Name),
						zap.Error(err))
				}
			}()
		}
	}
}

// Enqueue schedules a task. It fails if the executor has not been started
// or has shut down.
func (e *Executor) Enqueue(task Task) error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return fmt.Errorf("tree: executor not started")
	}
	if e.shutdown {
		e.mu.Unlock()
		return fmt.Errorf("tree: executor shut down")
	}
	e.mu.Unlock()

	select {
	case e.tasks <- task:
		return nil
	case <-e.ctx.Done():
		return fmt.Errorf("tree: executor closed")
	}
}

// Shutdown stops accepting tasks and waits for queued work to finish.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	if !e.started || e.shutdown {
		e.mu.Unlock()
		return
	}
	e.shutdown = true
	e.mu.Unlock()

	close(e.tasks)
	e.wg.Wait()
}

// Stop cancels in-flight work and returns without draining the queue.
func (e *Executor) Stop() {
	e.cancel()
	e.wg.Wait()
}

var (
	defaultExecOnce sync.Once
	defaultExec     *Executor
)

// DefaultExecutor returns the shared executor used by Flow, starting it on
// first use with configuration read from the environment.
func DefaultExecutor() *Executor {
	defaultExecOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			log().Warn("falling back to default executor config", zap.Error(err))
		}
		defaultExec = NewExecutor(cfg.FlowWorkers, cfg.FlowQueueSize)
		defaultExec.Start()
	})
	return defaultExec
}
