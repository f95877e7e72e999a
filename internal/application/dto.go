package application

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type CreateApplicationDTO struct {
	Type          string     `json:"type"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	Reason        string     `json:"reason"`
}

func (dto CreateApplicationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("type", dto.Type).Required().OneOf(Types...)
	v.Field("start_datetime", dto.StartDatetime).Required()
	v.Field("reason", dto.Reason).Required().NotBlank().MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	if dto.EndDatetime != nil && dto.EndDatetime.Before(dto.StartDatetime) {
		return internal.NewValidationFieldError("end_datetime", "end must not be before start", internal.ErrCodeInvalidDate)
	}
	return nil
}

// UpdateApplicationDTO covers applicant edits while the application is still
// pending manager review.
type UpdateApplicationDTO struct {
	Type          *string    `json:"type,omitempty"`
	StartDatetime *time.Time `json:"start_datetime,omitempty"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	Reason        *string    `json:"reason,omitempty"`
}

func (dto UpdateApplicationDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Type != nil {
		v.Field("type", *dto.Type).OneOf(Types...)
	}
	if dto.Reason != nil {
		v.Field("reason", *dto.Reason).NotBlank().MaxLength(500)
	}
	return errOrNil(v.Validate())
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reason", dto.Reason).Required().NotBlank().MaxLength(500)
	return errOrNil(v.Validate())
}

type SendBackDTO struct {
	Reason string `json:"reason"`
	// CancelApproval sends an approved application back one stage only, to
	// pending_hr, instead of all the way to the manager.
	CancelApproval bool `json:"cancel_approval,omitempty"`
}

func (dto SendBackDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reason", dto.Reason).Required().NotBlank().MaxLength(500)
	return errOrNil(v.Validate())
}

// Filter carries list criteria shared by the applicant, manager, and HR
// views. StartDate is inclusive and EndDate is next-day exclusive, both
// applied to the application's start_datetime.
type Filter struct {
	Status    string
	Type      string
	Query     string // applicant name, case-insensitive substring
	StartDate time.Time
	HasStart  bool
	EndDate   time.Time
	HasEnd    bool
	Limit     int
	Offset    int
}

func errOrNil(err *internal.AppError) error {
	if err != nil {
		return err
	}
	return nil
}
