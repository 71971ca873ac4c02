package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/task-tracker/internal/core/events"
)

type Enqueuer interface {
	Enqueue(msg Message) bool
}

type EventHandler struct {
	renderer *Renderer
	queue    Enqueuer
	from     string
	mailbox  string
	logger   *slog.Logger
}

func NewEventHandler(renderer *Renderer, queue Enqueuer, from, mailbox string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		renderer: renderer,
		queue:    queue,
		from:     from,
		mailbox:  mailbox,
		logger:   logger,
	}
}

func (h *EventHandler) HandleAdminRequestSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(*events.AdminRequestSubmittedEvent)
	if !ok {
		h.logger.Error("invalid event type for admin request submitted handler", "event_type", event.EventType())
		return fmt.Errorf("expected AdminRequestSubmittedEvent, got %T", event)
	}

	msg, err := h.renderer.AdminNotice(h.from, h.mailbox, submitted.RequestID, submitted.Name, submitted.Email, submitted.Reason, submitted.RequestedAt)
	if err != nil {
		return fmt.Errorf("rendering admin notice for request %d: %w", submitted.RequestID, err)
	}

	if h.queue.Enqueue(msg) {
		h.logger.Info("admin notice queued", "request_id", submitted.RequestID, "message_id", msg.ID, "event_id", submitted.EventID())
	}
	return nil
}

func (h *EventHandler) HandleAdminRequestReviewed(ctx context.Context, event events.Event) error {
	reviewed, ok := event.(*events.AdminRequestReviewedEvent)
	if !ok {
		h.logger.Error("invalid event type for admin request reviewed handler", "event_type", event.EventType())
		return fmt.Errorf("expected AdminRequestReviewedEvent, got %T", event)
	}

	msg, err := h.renderer.Decision(h.from, reviewed.Email, reviewed.Name, reviewed.Status, reviewed.ReviewerName)
	if err != nil {
		return fmt.Errorf("rendering decision for request %d: %w", reviewed.RequestID, err)
	}

	if h.queue.Enqueue(msg) {
		h.logger.Info("decision notice queued", "request_id", reviewed.RequestID, "status", reviewed.Status, "message_id", msg.ID)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeAdminRequestSubmitted, h.HandleAdminRequestSubmitted)
	eventBus.Subscribe(events.EventTypeAdminRequestReviewed, h.HandleAdminRequestReviewed)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeAdminRequestSubmitted, events.EventTypeAdminRequestReviewed})
}
