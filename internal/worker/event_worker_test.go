package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smartcommunity/portal/internal/events"
	"github.com/smartcommunity/portal/internal/observability"
	"github.com/smartcommunity/portal/internal/service"
)

func TestStartVisitorEventWorker(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	StartVisitorEventWorker(service.NewNotificationService(dispatcher, nil, metrics, logger), logger)

	started := logs.FilterMessage("visitor event worker started").All()
	require.Len(t, started, 1)
	assert.Equal(t, false, started[0].ContextMap()["nats_forwarding"])

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventVisitorCheckedIn, VisitorID: "v1"}))
	assert.Equal(t, 1, logs.FilterMessage("VisitorCheckedIn").Len())
	assert.NotEmpty(t, metrics.Snapshot().VisitorEvents)
}

func TestStartVisitorEventWorkerNil(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	StartVisitorEventWorker(nil, zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("visitor event worker disabled").Len())
}
