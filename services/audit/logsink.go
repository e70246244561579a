package audit

import (
	"context"

	"github.com/upb/agent-authz/models"
	"go.uber.org/zap"
)

// LogSink writes decision records to structured logs. Denied decisions log
// at warn so they stand out in aggregation; grants log at info.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record implements Sink.
func (s *LogSink) Record(_ context.Context, rec *models.DecisionRecord) error {
	fields := []zap.Field{
		zap.String("decision_id", rec.ID.String()),
		zap.String("request_id", rec.RequestID),
		zap.String("agent_id", rec.AgentID),
		zap.String("action", rec.Action),
		zap.String("resource_type", rec.ResourceType),
		zap.String("resource_name", rec.ResourceName),
		zap.Bool("allowed", rec.Allowed),
		zap.Strings("matched_rules", rec.MatchedRules),
		zap.Strings("deny_reasons", rec.DenyReasons),
		zap.Time("evaluated_at", rec.EvaluatedAt),
	}
	if rec.Amount != nil {
		fields = append(fields, zap.Float64("amount", *rec.Amount))
	}

	if rec.Allowed {
		s.logger.Info("authorization decision", fields...)
	} else {
		s.logger.Warn("authorization decision", fields...)
	}
	return nil
}
