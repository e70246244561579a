package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

// Sink receives decision records. A durable sink (database, event bus) would
// satisfy the same interface; the shipped sink forwards records to
// structured logs.
type Sink interface {
	Record(ctx context.Context, rec *models.DecisionRecord) error
}

// Service dispatches decision records to a sink asynchronously so that
// evaluation latency never depends on the sink. Records are buffered on a
// channel and drained by a pool of workers.
type Service struct {
	sink        Sink
	logger      *zap.Logger
	recordChan  chan *models.DecisionRecord
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	mu          sync.Mutex
	started     bool
	dropped     uint64
}

// Config holds configuration for the audit Service.
type Config struct {
	BufferSize  int
	WorkerCount int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:  10000,
		WorkerCount: 4,
	}
}

// NewService creates an audit Service over the given sink.
func NewService(sink Sink, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}

	return &Service{
		sink:        sink,
		logger:      logger,
		recordChan:  make(chan *models.DecisionRecord, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start launches the background workers.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains pending records and stops the workers, waiting at most
// timeout.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_records", len(s.recordChan)))
	close(s.recordChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Submit queues a record without blocking. When the buffer is full the
// record is dropped and counted; the decision itself is unaffected.
func (s *Service) Submit(rec *models.DecisionRecord) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	select {
	case s.recordChan <- rec:
		return nil
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		s.logger.Warn("audit buffer full, dropping record",
			zap.String("agent_id", rec.AgentID),
			zap.String("action", rec.Action))
		return fmt.Errorf("audit buffer full")
	}
}

// Stats reports queue state.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingRecords: len(s.recordChan),
		WorkerCount:    s.workerCount,
		Dropped:        s.dropped,
		Started:        s.started,
	}
}

// Stats represents audit service statistics.
type Stats struct {
	BufferSize     int
	PendingRecords int
	WorkerCount    int
	Dropped        uint64
	Started        bool
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for rec := range s.recordChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.sink.Record(ctx, rec); err != nil {
			s.logger.Error("failed to record decision",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("agent_id", rec.AgentID),
				zap.String("action", rec.Action))
		}
		cancel()
	}
}
