package application

import (
	"errors"
	"time"
)

// Application statuses. Transitions only move along the edges enforced by the
// service: pending_manager -> pending_hr -> approved, pending_manager ->
// rejected, and send-back moves backward.
const (
	StatusPendingManager = "pending_manager"
	StatusPendingHr      = "pending_hr"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
)

const (
	TypePaidLeave    = "paid_leave"
	TypeLate         = "late"
	TypeEarlyLeave   = "early_leave"
	TypeAbsence      = "absence"
	TypeBusinessTrip = "business_trip"
	TypeRemote       = "remote"
	TypeOther        = "other"
)

var Types = []string{
	TypePaidLeave, TypeLate, TypeEarlyLeave, TypeAbsence,
	TypeBusinessTrip, TypeRemote, TypeOther,
}

// TypeLabels are the human readable names used in notification messages.
var TypeLabels = map[string]string{
	TypePaidLeave:    "Paid Leave",
	TypeLate:         "Late Arrival",
	TypeEarlyLeave:   "Early Leave",
	TypeAbsence:      "Absence",
	TypeBusinessTrip: "Business Trip",
	TypeRemote:       "Remote Work",
	TypeOther:        "Other",
}

type Application struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	ApplicantID       int64      `json:"applicant_id" gorm:"column:applicant_id;not null"`
	Type              string     `json:"type" gorm:"column:type;not null"`
	StartDatetime     time.Time  `json:"start_datetime" gorm:"column:start_datetime;not null"`
	EndDatetime       *time.Time `json:"end_datetime,omitempty" gorm:"column:end_datetime"`
	Reason            string     `json:"reason" gorm:"column:reason;not null"`
	Status            string     `json:"status" gorm:"column:status;default:pending_manager"`
	ManagerApproverID *int64     `json:"manager_approver_id,omitempty" gorm:"column:manager_approver_id"`
	ManagerApprovedAt *time.Time `json:"manager_approved_at,omitempty" gorm:"column:manager_approved_at"`
	HrApproverID      *int64     `json:"hr_approver_id,omitempty" gorm:"column:hr_approver_id"`
	HrApprovedAt      *time.Time `json:"hr_approved_at,omitempty" gorm:"column:hr_approved_at"`
	RejectionReason   *string    `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`

	// Joined from the applicant row on reads, never written.
	ApplicantName         string `json:"applicant_name,omitempty" gorm:"->;-:migration"`
	ApplicantDepartmentID *int64 `json:"-" gorm:"->;-:migration"`
	ApplicantTeamID       *int64 `json:"-" gorm:"->;-:migration"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) IsPendingManager() bool {
	return a.Status == StatusPendingManager
}

func (a *Application) IsPendingHr() bool {
	return a.Status == StatusPendingHr
}

func (a *Application) IsApproved() bool {
	return a.Status == StatusApproved
}

func (a *Application) IsRejected() bool {
	return a.Status == StatusRejected
}

// Editable reports whether the applicant may still change or withdraw the
// application. Once a manager has acted the row is frozen for the applicant.
func (a *Application) Editable() bool {
	return a.IsPendingManager()
}

// CanSendBack reports whether a send-back is legal from the current status.
func (a *Application) CanSendBack() bool {
	switch a.Status {
	case StatusPendingManager, StatusPendingHr, StatusApproved:
		return true
	}
	return false
}

var ErrApplicationNotFound = errors.New("application not found")

// HrVisibleStatuses are the statuses shown in the HR review list. The HR
// detail view may additionally open a pending_manager application.
var HrVisibleStatuses = []string{StatusPendingHr, StatusApproved, StatusRejected}
