package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"watch-party/contract"
	"watch-party/errors"
)

// Supervisor keeps the background workers of the server alive.
// A worker returning nil is done for good. A worker failing or panicking is
// restarted after restartInterval, until the supervised context ends.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{log: log, restartInterval: restartInterval}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every added worker and blocks until all of them are over.
// Canceling ctx or calling Stop ends them.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	workers := s.workers
	s.mu.Unlock()

	for _, worker := range workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start supervises one worker in its own goroutine.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.supervise(ctx, worker)
	}()
}

func (s *Supervisor) supervise(ctx context.Context, worker contract.Worker) {
	log := s.log.With("worker", contract.GetWorkerName(worker))
	for ctx.Err() == nil {
		err := runSafely(ctx, worker)
		switch {
		case err == nil:
			log.Info("Worker finished")
			return
		case ctx.Err() != nil:
			log.Info("Worker stopped", "error", err)
			return
		}

		log.Warn("Worker failed, restarting", "error", err, "in", s.restartInterval)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.restartInterval):
		}
	}
	log.Info("Worker not started, context is over")
}

// runSafely turns a panic of the worker into an ErrWorkerPanic error.
func runSafely(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels the workers started by Run. Run returns once they are over.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
