package attendance

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type UpdateNoteDTO struct {
	Note string `json:"note"`
}

func (dto UpdateNoteDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("note", dto.Note).MaxLength(500)
	return errOrNil(v.Validate())
}

// CreateRecordDTO is the HR manual-entry payload for a day an employee could
// not punch themselves.
type CreateRecordDTO struct {
	UserID   int64      `json:"user_id"`
	Date     string     `json:"date"`
	ClockIn  *time.Time `json:"clock_in,omitempty"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
	Note     string     `json:"note"`
}

func (dto CreateRecordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("date", dto.Date).Required()
	v.Field("note", dto.Note).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	if _, err := time.Parse(DateLayout, dto.Date); err != nil {
		return internal.NewValidationFieldError("date", "date must be formatted YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	if dto.ClockIn != nil && dto.ClockOut != nil && dto.ClockOut.Before(*dto.ClockIn) {
		return internal.NewValidationFieldError("clock_out", "clock out must not be before clock in", internal.ErrCodeInvalidDate)
	}
	return nil
}

type UpdateRecordDTO struct {
	ClockIn  *time.Time `json:"clock_in,omitempty"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
	Note     *string    `json:"note,omitempty"`
}

func (dto UpdateRecordDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Note != nil {
		v.Field("note", *dto.Note).MaxLength(500)
	}
	return errOrNil(v.Validate())
}

// Filter carries attendance list criteria. Both date bounds are inclusive
// calendar dates, unlike the workflow filters which compare timestamps.
type Filter struct {
	Query      string // owner name or username, case-insensitive substring
	StartDate  string
	EndDate    string
	ReadStatus string // "", "read", "unread"
	Limit      int
	Offset     int
}

func errOrNil(err *internal.AppError) error {
	if err != nil {
		return err
	}
	return nil
}
