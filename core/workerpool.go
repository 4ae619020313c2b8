package orchestration

import (
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

// TODO: The task slice grows for the lifetime of the pool even though
// consumed entries are never reused. Switch to a ring buffer if long-lived
// rooms with heavy audio traffic become common.

// workerPool runs tasks with bounded parallelism over an unbounded FIFO
// queue. Submissions never block and are never dropped; a backlog queues
// until workers catch up.
type workerPool struct {
	mu            sync.Mutex
	cond          *sync.Cond
	tasks         []func()
	tasksConsumed int
	closed        bool

	wg sync.WaitGroup
}

func newWorkerPool(workers int) *workerPool {
	p := &workerPool{}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Submit enqueues a task. Fails with ErrPoolClosed once Shutdown has begun.
func (p *workerPool) Submit(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.tasks = append(p.tasks, task)
	p.mu.Unlock()

	p.cond.Signal()
	return nil
}

func (p *workerPool) work() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.tasksConsumed >= len(p.tasks) && !p.closed {
			p.cond.Wait()
		}

		if p.tasksConsumed < len(p.tasks) {
			task := p.tasks[p.tasksConsumed]
			p.tasksConsumed++
			p.mu.Unlock()
			task()
			continue
		}

		p.mu.Unlock()
		return
	}
}

// Shutdown stops accepting new tasks immediately. Tasks already queued or in
// flight still run to completion before the workers exit.
func (p *workerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cond.Broadcast()
}

// Wait blocks until every worker has exited.
func (p *workerPool) Wait() {
	p.wg.Wait()
}
