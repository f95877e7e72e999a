package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal/core/events"
)

// EventHandler turns workflow events into inbox rows. It runs on the async
// bus, so a failure here is logged by the bus and never reaches the workflow
// transition that emitted the event.
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

func (h *EventHandler) HandleApplicationSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(events.ApplicationSubmitted)
	if !ok {
		return fmt.Errorf("expected ApplicationSubmitted, got %T", event)
	}

	message := fmt.Sprintf("A new %s application is awaiting your approval.", submitted.TypeLabel)
	link := fmt.Sprintf("/api/v1/applications/%d", submitted.ApplicationID)

	return h.service.Emit(&submitted.ApplicantID, submitted.ManagerID, message, link)
}

func (h *EventHandler) HandleApplicationHrApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(events.ApplicationHrApproved)
	if !ok {
		return fmt.Errorf("expected ApplicationHrApproved, got %T", event)
	}

	message := fmt.Sprintf("Your %s application has been approved.", approved.TypeLabel)
	link := fmt.Sprintf("/api/v1/applications/%d", approved.ApplicationID)

	return h.service.Emit(&approved.ApproverID, approved.ApplicantID, message, link)
}

func (h *EventHandler) HandleApplicationSentBack(ctx context.Context, event events.Event) error {
	sentBack, ok := event.(events.ApplicationSentBack)
	if !ok {
		return fmt.Errorf("expected ApplicationSentBack, got %T", event)
	}

	message := fmt.Sprintf("Your %s application was sent back to %s review.", sentBack.TypeLabel, stageLabel(sentBack.ReturnedTo))
	link := fmt.Sprintf("/api/v1/applications/%d", sentBack.ApplicationID)

	return h.service.Emit(&sentBack.ActorID, sentBack.ApplicantID, message, link)
}

func stageLabel(status string) string {
	switch status {
	case "pending_manager":
		return "manager"
	case "pending_hr":
		return "HR"
	}
	return status
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.ApplicationSubmittedEvent, h.HandleApplicationSubmitted)
	eventBus.Subscribe(events.ApplicationHrApprovedEvent, h.HandleApplicationHrApproved)
	eventBus.Subscribe(events.ApplicationSentBackEvent, h.HandleApplicationSentBack)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{
			events.ApplicationSubmittedEvent,
			events.ApplicationHrApprovedEvent,
			events.ApplicationSentBackEvent,
		})
}
