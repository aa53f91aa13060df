package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/pod-tracker/internal/config"
	"github.com/spec-kit/pod-tracker/internal/events"
)

// NotificationService mirrors lifecycle events to external channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPodCreated, n.handlePodEvent)
	n.dispatcher.Subscribe(events.EventPodStatusChanged, n.handlePodEvent)
	n.dispatcher.Subscribe(events.EventPodAssigned, n.handlePodEvent)
	n.dispatcher.Subscribe(events.EventIdentityMerged, n.handleIdentityMerged)
	n.dispatcher.Subscribe(events.EventSlaReminder, n.handleSlaReminder)
}

func (n *NotificationService) handlePodEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("pod_id", event.PodID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleIdentityMerged(ctx context.Context, event events.Event) error {
	n.logger.Info("IdentityMerged", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSlaReminder(ctx context.Context, event events.Event) error {
	n.logger.Info("SlaReminder", zap.String("pod_id", event.PodID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("pod_id", event.PodID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("pod_id", event.PodID),
		zap.String("event_type", string(event.Type)))
}
