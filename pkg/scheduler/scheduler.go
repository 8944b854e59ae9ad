package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Work is a unit of work executed by a worker.
type Work[T any] func(ctx context.Context) (T, error)

// Result is what a Work produced.
type Result[T any] struct {
	Data T
	Err  error
}

// Future gives access to the result of a scheduled Work.
type Future[T any] struct {
	c      chan Result[T]
	cancel context.CancelFunc
}

// C returns the channel receiving the single result of the work.
func (f *Future[T]) C() <-chan Result[T] {
	return f.c
}

// Stop cancels the context handed to the work.
func (f *Future[T]) Stop() {
	f.cancel()
}

// Wait blocks until the work finished or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) Result[T] {
	select {
	case r := <-f.c:
		return r
	case <-ctx.Done():
		f.cancel()
		return Result[T]{Err: ctx.Err()}
	}
}

type workRequest struct {
	fn     Work[any]
	c      chan Result[any]
	ctx    context.Context
	cancel context.CancelFunc
}

// queue is a FIFO of pending requests.
type queue []workRequest

func (q *queue) Len() int { return len(*q) }

func (q *queue) Pop() workRequest {
	old := *q
	x := old[0]
	old[0] = workRequest{}
	*q = old[1:]
	return x
}

func (q *queue) Push(r workRequest) {
	*q = append(*q, r)
}

// Scheduler runs work on a fixed number of workers. Work submitted while every
// worker is busy is queued and dispatched in submission order.
type Scheduler struct {
	nbWorkers  int
	busy       int
	pending    queue
	mu         sync.Mutex
	closed     bool
	work       chan workRequest
	done       chan struct{}
	close      chan struct{}
	stopped    chan struct{}
	mainCtx    context.Context
	mainCancel context.CancelFunc
}

func NewScheduler(nbWorkers int) *Scheduler {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		nbWorkers:  nbWorkers,
		work:       make(chan workRequest),
		done:       make(chan struct{}),
		close:      make(chan struct{}),
		stopped:    make(chan struct{}),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	go s.run()
	return s
}

// AddWork schedules w. After Close the returned future resolves at once with context.Canceled.
func (s *Scheduler) AddWork(w Work[any]) *Future[any] {
	c := make(chan Result[any], 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		c <- Result[any]{Err: context.Canceled}
		return &Future[any]{c: c, cancel: func() {}}
	}

	ctx, cancel := context.WithCancel(s.mainCtx)
	s.work <- workRequest{fn: w, c: c, ctx: ctx, cancel: cancel}
	return &Future[any]{c: c, cancel: cancel}
}

// Submit schedules a typed work on s. The returned future resolves exactly once,
// like the one returned by AddWork.
func Submit[T any](s *Scheduler, w Work[T]) *Future[T] {
	inner := s.AddWork(func(ctx context.Context) (any, error) {
		return w(ctx)
	})
	c := make(chan Result[T], 1)
	go func() {
		r := <-inner.c
		data, _ := r.Data.(T)
		c <- Result[T]{Data: data, Err: r.Err}
	}()
	return &Future[T]{c: c, cancel: inner.cancel}
}

// Close cancels all work, resolves queued work with context.Canceled and waits
// for running work to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.mainCancel()
	s.close <- struct{}{}
	<-s.stopped
}

func (s *Scheduler) run() {
	defer close(s.stopped)
	for {
		select {
		case r := <-s.work:
			s.pending.Push(r)
			s.dispatch()
		case <-s.done:
			s.busy--
			s.dispatch()
		case <-s.close:
			for s.pending.Len() > 0 {
				r := s.pending.Pop()
				r.c <- Result[any]{Err: context.Canceled}
				r.cancel()
			}
			for s.busy > 0 {
				<-s.done
				s.busy--
			}
			return
		}
	}
}

// dispatch starts pending work on idle workers. Nothing starts once the
// scheduler is closing; run resolves what is left.
func (s *Scheduler) dispatch() {
	if s.mainCtx.Err() != nil {
		return
	}
	for s.busy < s.nbWorkers && s.pending.Len() > 0 {
		s.busy++
		go s.execute(s.pending.Pop())
	}
}

func (s *Scheduler) execute(r workRequest) {
	var result Result[any]
	defer func() {
		if p := recover(); p != nil {
			zap.S().Named("scheduler").Errorw("worker panicked", "panic", p)
			result = Result[any]{Err: fmt.Errorf("worker panicked: %v", p)}
		}
		r.c <- result
		r.cancel()
		s.done <- struct{}{}
	}()

	if err := r.ctx.Err(); err != nil {
		result = Result[any]{Err: err}
		return
	}
	v, err := r.fn(r.ctx)
	result = Result[any]{Data: v, Err: err}
}
