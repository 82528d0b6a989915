package queue

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var errPanicked = errors.New("queue: job panicked")

type Job struct {
	Name string
	Fn   func() error
	Errc chan error
}

// RequestQueueManager runs jobs on a fixed pool of workers fed by a bounded
// channel.
type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	logger     zerolog.Logger
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
}

func NewRequestQueueManager(queueSize int, maxWorkers int, logger zerolog.Logger) *RequestQueueManager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
		logger:     logger,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			rqm.logger.Debug().Int("worker", workerID).Msg("worker started")
			for job := range rqm.JobQueue {
				err := rqm.run(job)
				if job.Errc != nil {
					job.Errc <- err
				} else if err != nil {
					rqm.logger.Warn().Err(err).Str("job", job.Name).Msg("job failed")
				}
			}
			rqm.logger.Debug().Int("worker", workerID).Msg("worker stopped")
		}(i)
	}
}

func (rqm *RequestQueueManager) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rqm.logger.Error().Interface("panic", r).Str("job", job.Name).Msg("recovered from panic in job")
			err = errPanicked
		}
	}()
	return job.Fn()
}

// EnqueueJob blocks until a slot is free. It reports false after Shutdown.
func (rqm *RequestQueueManager) EnqueueJob(job Job) bool {
	rqm.mu.RLock()
	defer rqm.mu.RUnlock()
	if rqm.closed {
		return false
	}
	rqm.JobQueue <- job
	return true
}

// TryEnqueue never blocks; it reports false when the queue is full or shut down.
func (rqm *RequestQueueManager) TryEnqueue(job Job) bool {
	rqm.mu.RLock()
	defer rqm.mu.RUnlock()
	if rqm.closed {
		return false
	}
	select {
	case rqm.JobQueue <- job:
		return true
	default:
		return false
	}
}

func (rqm *RequestQueueManager) Depth() int {
	return len(rqm.JobQueue)
}

func (rqm *RequestQueueManager) Shutdown() {
	rqm.mu.Lock()
	if rqm.closed {
		rqm.mu.Unlock()
		return
	}
	rqm.closed = true
	close(rqm.JobQueue)
	rqm.mu.Unlock()
	rqm.wg.Wait()
}
