package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/telemetry"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.messaging", "messaging-service", "test")

	var captured telemetry.AuditEnvelope
	publisher.On("Publish", mock.Anything, "audit.messaging", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(telemetry.AuditEnvelope)
		}).
		Return(nil).Once()

	actor := "company:7"
	emitter.Emit(context.Background(), "WARN", "contact quota exceeded", "req-1", &actor)

	publisher.AssertExpectations(t)
	assert.Equal(t, 1, captured.SchemaVersion)
	assert.Equal(t, "audit_log", captured.EventType)
	assert.Equal(t, "messaging-service", captured.Service)
	assert.Equal(t, "test", captured.Environment)
	assert.Equal(t, "req-1", captured.RequestID)
	require.NotNil(t, captured.Actor)
	assert.Equal(t, "company:7", *captured.Actor)
	assert.Equal(t, "WARN", captured.Payload.Level)
	assert.Equal(t, "contact quota exceeded", captured.Payload.Text)
}

func TestEmitNilEmitterIsNoop(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	// Must not panic.
	emitter.Emit(context.Background(), "INFO", "ignored", "req-2", nil)
}

func TestEmitPublishErrorIsSwallowed(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.messaging", "messaging-service", "test")

	publisher.On("Publish", mock.Anything, "audit.messaging", mock.Anything).Return(assert.AnError).Once()

	emitter.Emit(context.Background(), "INFO", "message deleted", "req-3", nil)
	publisher.AssertExpectations(t)
}
