package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

// capturingSink records everything it receives.
type capturingSink struct {
	mu      sync.Mutex
	records []*models.DecisionRecord
}

func (s *capturingSink) Record(_ context.Context, rec *models.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *capturingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func testRecord(agentID string) *models.DecisionRecord {
	return models.NewDecisionRecord("req-1", models.Request{AgentID: agentID, Action: "read"}, models.Decision{Allowed: true})
}

func TestServiceDeliversRecords(t *testing.T) {
	sink := &capturingSink{}
	svc := NewService(sink, zap.NewNop(), Config{BufferSize: 100, WorkerCount: 2})
	require.NoError(t, svc.Start())

	for i := 0; i < 50; i++ {
		require.NoError(t, svc.Submit(testRecord("agent-a")))
	}

	require.NoError(t, svc.Stop(2*time.Second))
	assert.Equal(t, 50, sink.count())
}

func TestServiceSubmitBeforeStart(t *testing.T) {
	svc := NewService(&capturingSink{}, zap.NewNop(), DefaultConfig())
	assert.Error(t, svc.Submit(testRecord("agent-a")))
}

func TestServiceDoubleStart(t *testing.T) {
	svc := NewService(&capturingSink{}, zap.NewNop(), DefaultConfig())
	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())
	require.NoError(t, svc.Stop(time.Second))
}

func TestServiceStopWithoutStart(t *testing.T) {
	svc := NewService(&capturingSink{}, zap.NewNop(), DefaultConfig())
	assert.Error(t, svc.Stop(time.Second))
}

func TestServiceDropsOnFullBuffer(t *testing.T) {
	// A sink that blocks until released, so the buffer fills up.
	release := make(chan struct{})
	blocked := &blockingSink{release: release, started: make(chan struct{})}

	svc := NewService(blocked, zap.NewNop(), Config{BufferSize: 1, WorkerCount: 1})
	require.NoError(t, svc.Start())

	// First record occupies the worker, second fills the buffer; the
	// next must be dropped.
	require.NoError(t, svc.Submit(testRecord("a")))
	blocked.waitUntilBusy()
	require.NoError(t, svc.Submit(testRecord("b")))

	err := svc.Submit(testRecord("c"))
	assert.Error(t, err)
	assert.EqualValues(t, 1, svc.Stats().Dropped)

	close(release)
	require.NoError(t, svc.Stop(2*time.Second))
}

type blockingSink struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *blockingSink) Record(_ context.Context, _ *models.DecisionRecord) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return nil
}

func (s *blockingSink) waitUntilBusy() {
	<-s.started
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(zap.NewNop())
	rec := models.NewDecisionRecord("req-1", models.Request{
		AgentID: "payment-agent",
		Action:  "process_payment",
	}, models.Decision{Allowed: false, DenyReasons: []string{"over limit"}})

	assert.NoError(t, sink.Record(context.Background(), rec))
}
