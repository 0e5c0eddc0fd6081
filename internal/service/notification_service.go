package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
)

type channel uint8

const (
	channelEmail channel = 1 << iota
	channelWebhook
)

// routes decides which stub channels each event reaches.
var routes = map[events.EventType]channel{
	events.EventTicketCreated:         channelEmail | channelWebhook,
	events.EventTicketStatusChanged:   channelEmail | channelWebhook,
	events.EventTicketPriorityChanged: channelWebhook,
	events.EventTicketAssigned:        channelEmail | channelWebhook,
	events.EventTicketDeleted:         channelWebhook,
	events.EventCommentAdded:          channelEmail,
}

// NotificationService turns ticket activity into (stubbed) email and
// webhook notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	emailFrom  string
	webhookURL string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     loggerOrNop(logger),
		emailFrom:  strings.TrimSpace(cfg.EmailFrom),
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
	}
}

// RegisterHandlers subscribes to every routed event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.notify)
}

func (n *NotificationService) notify(ctx context.Context, event events.Event) error {
	route, ok := routes[event.Type]
	if !ok {
		return nil
	}
	fields := append([]zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.UserID),
	}, payloadFields(event.Payload)...)
	n.logger.Info("ticket activity", fields...)

	if route&channelEmail != 0 && n.emailFrom != "" {
		n.sendEmail(ctx, event)
	}
	if route&channelWebhook != 0 && n.webhookURL != "" {
		n.sendWebhook(ctx, event)
	}
	return nil
}

func payloadFields(payload any) []zap.Field {
	switch p := payload.(type) {
	case events.TicketCreatedPayload:
		return []zap.Field{zap.String("category", p.Category), zap.String("priority", string(p.Priority))}
	case events.TicketStatusChangedPayload:
		return []zap.Field{zap.String("from", string(p.OldStatus)), zap.String("to", string(p.NewStatus))}
	case events.TicketPriorityChangedPayload:
		return []zap.Field{zap.String("from", string(p.OldPriority)), zap.String("to", string(p.NewPriority))}
	case events.TicketAssignedPayload:
		return []zap.Field{zap.String("from", p.OldAssignee), zap.String("to", p.NewAssignee)}
	case events.CommentAddedPayload:
		return []zap.Field{zap.String("comment_id", p.CommentID), zap.String("author_role", string(p.AuthorRole))}
	}
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event) {
	n.logger.Debug("email notification queued",
		zap.String("from", n.emailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	n.logger.Debug("webhook notification queued",
		zap.String("url", n.webhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
