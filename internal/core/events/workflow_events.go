package events

import (
	"time"

	"github.com/google/uuid"
)

// Workflow event types consumed by the notification module.
const (
	ApplicationSubmittedEvent  = "application.submitted"
	ApplicationHrApprovedEvent = "application.hr_approved"
	ApplicationSentBackEvent   = "application.sent_back"
)

type ApplicationSubmitted struct {
	BaseEvent
	ApplicationID int64
	ApplicantID   int64
	ManagerID     int64
	TypeLabel     string
}

func NewApplicationSubmitted(applicationID, applicantID, managerID int64, typeLabel string) ApplicationSubmitted {
	return ApplicationSubmitted{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      ApplicationSubmittedEvent,
			Timestamp: time.Now(),
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		ManagerID:     managerID,
		TypeLabel:     typeLabel,
	}
}

type ApplicationHrApproved struct {
	BaseEvent
	ApplicationID int64
	ApplicantID   int64
	ApproverID    int64
	TypeLabel     string
}

func NewApplicationHrApproved(applicationID, applicantID, approverID int64, typeLabel string) ApplicationHrApproved {
	return ApplicationHrApproved{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      ApplicationHrApprovedEvent,
			Timestamp: time.Now(),
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		ApproverID:    approverID,
		TypeLabel:     typeLabel,
	}
}

type ApplicationSentBack struct {
	BaseEvent
	ApplicationID int64
	ApplicantID   int64
	ActorID       int64
	TypeLabel     string
	// Stage the application was returned to: pending_manager or pending_hr.
	ReturnedTo string
}

func NewApplicationSentBack(applicationID, applicantID, actorID int64, typeLabel, returnedTo string) ApplicationSentBack {
	return ApplicationSentBack{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      ApplicationSentBackEvent,
			Timestamp: time.Now(),
		},
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		ActorID:       actorID,
		TypeLabel:     typeLabel,
		ReturnedTo:    returnedTo,
	}
}
