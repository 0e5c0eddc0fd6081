package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

func TestNotificationRouting(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "desk@example.com",
		WebhookURL: "https://hooks.example.com/desk",
	}).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventCommentAdded, "ticket-1", events.Actor{UserID: "user-1"},
		events.CommentAddedPayload{CommentID: "c-1", AuthorRole: "end_user"})))

	assert.Equal(t, 1, logs.FilterMessage("ticket activity").Len())
	assert.Equal(t, 1, logs.FilterMessage("email notification queued").Len())
	assert.Zero(t, logs.FilterMessage("webhook notification queued").Len())

	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTicketDeleted, "ticket-1", events.Actor{}, nil)))
	assert.Equal(t, 1, logs.FilterMessage("webhook notification queued").Len())

	entry := logs.FilterMessage("ticket activity").All()[0]
	assert.Equal(t, "c-1", entry.ContextMap()["comment_id"])
}

func TestNotificationChannelsDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventTicketCreated, "ticket-1", events.Actor{}, events.TicketCreatedPayload{})))
	assert.Equal(t, 1, logs.Len())
}
