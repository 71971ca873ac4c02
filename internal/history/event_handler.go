package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/task-tracker/internal/core/events"
)

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleTaskHistory(ctx context.Context, event events.Event) error {
	historyEvent, ok := event.(*events.TaskHistoryEvent)
	if !ok {
		h.logger.Error("invalid event type for task history handler", "event_type", event.EventType())
		return fmt.Errorf("expected TaskHistoryEvent, got %T", event)
	}

	if err := h.service.Record(ctx, historyEvent.Entries); err != nil {
		return fmt.Errorf("recording history for task %d: %w", historyEvent.TaskID, err)
	}

	h.logger.Debug("task history recorded",
		"task_id", historyEvent.TaskID,
		"entries", len(historyEvent.Entries),
		"event_id", historyEvent.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeTaskHistory, h.HandleTaskHistory)

	h.logger.Info("history event handlers registered",
		"handlers", []string{events.EventTypeTaskHistory})
}
