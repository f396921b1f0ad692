// Package worker runs accepted inbound messages through processing on a
// fixed number of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cskr/pubsub"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const topic = "inbound"

var ErrPoolStopped = errors.New("worker pool is stopped")

// Processor handles one unit of work.
type Processor func(ctx context.Context, inboundId uint32) error

type Job struct {
	Id        string
	InboundId uint32
}

type Pool struct {
	ps      *pubsub.PubSub
	jobs    chan interface{}
	workers int
	timeout time.Duration
	process Processor
	logger  *zap.Logger

	mu        sync.RWMutex
	stopped   bool
	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool creates a pool of workers goroutines with room for queueSize
// pending jobs. Each job runs with its own timeout.
func NewPool(workers, queueSize int, timeout time.Duration, process Processor, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	ps := pubsub.New(queueSize)
	return &Pool{
		ps:      ps,
		jobs:    ps.Sub(topic),
		workers: workers,
		timeout: timeout,
		process: process,
		logger:  logger.Named("worker"),
	}
}

func (p *Pool) Start() {
	p.mu.RLock()
	stopped := p.stopped
	p.mu.RUnlock()
	if stopped {
		return
	}
	p.startWorkers()
}

func (p *Pool) startWorkers() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.run(i)
		}
		p.logger.Info("worker pool started", zap.Int("workers", p.workers))
	})
}

// Submit queues processing of the inbound message. Blocks while the queue is full.
func (p *Pool) Submit(inboundId uint32) (Job, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return Job{}, ErrPoolStopped
	}

	job := Job{Id: uuid.NewString(), InboundId: inboundId}
	p.ps.Pub(job, topic)
	return job, nil
}

// Stop rejects new jobs and waits until the queued ones are processed.
func (p *Pool) Stop() {
	//drain before taking the write lock, a Submit may hold the read lock on a full queue
	p.startWorkers()

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.ps.Shutdown()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) run(n int) {
	defer p.wg.Done()
	for val := range p.jobs {
		job, ok := val.(Job)
		if !ok {
			continue
		}
		p.handle(n, job)
	}
}

func (p *Pool) handle(n int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	err := p.safeProcess(ctx, job)
	fields := []zap.Field{
		zap.Int("worker", n),
		zap.String("job", job.Id),
		zap.Uint32("inbound", job.InboundId),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		p.logger.Error("job failed", append(fields, zap.Error(err))...)
		return
	}
	p.logger.Debug("job done", fields...)
}

func (p *Pool) safeProcess(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.process(ctx, job.InboundId)
}
