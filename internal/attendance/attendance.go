package attendance

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date key of an attendance record. One record per
// user per date, enforced by a unique constraint.
const DateLayout = "2006-01-02"

type AttendanceRecord struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	UserID           int64      `json:"user_id" gorm:"column:user_id;not null"`
	Date             string     `json:"date" gorm:"column:date;not null"`
	ClockIn          *time.Time `json:"clock_in,omitempty" gorm:"column:clock_in"`
	ClockOut         *time.Time `json:"clock_out,omitempty" gorm:"column:clock_out"`
	TotalWorkSeconds *int64     `json:"total_work_seconds,omitempty" gorm:"column:total_work_seconds"`
	Note             string     `json:"note" gorm:"column:note"`
	IsRead           bool       `json:"is_read" gorm:"column:is_read;default:false"`
	ReadBy           *int64     `json:"read_by,omitempty" gorm:"column:read_by"`
	ReadAt           *time.Time `json:"read_at,omitempty" gorm:"column:read_at"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`

	Breaks []BreakRecord `json:"breaks,omitempty" gorm:"foreignKey:AttendanceRecordID"`

	// Joined from the owner row on reads, never written.
	OwnerName         string `json:"owner_name,omitempty" gorm:"->;-:migration"`
	OwnerDepartmentID *int64 `json:"-" gorm:"->;-:migration"`
	OwnerTeamID       *int64 `json:"-" gorm:"->;-:migration"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

type BreakRecord struct {
	ID                 int64      `json:"id" gorm:"primaryKey"`
	AttendanceRecordID int64      `json:"attendance_record_id" gorm:"column:attendance_record_id;not null"`
	StartTime          time.Time  `json:"start_time" gorm:"column:start_time;not null"`
	EndTime            *time.Time `json:"end_time,omitempty" gorm:"column:end_time"`
	CreatedAt          time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (BreakRecord) TableName() string {
	return "break_records"
}

func (b *BreakRecord) IsOpen() bool {
	return b.EndTime == nil
}

// OpenBreak returns the record's unfinished break, nil when every break is
// closed.
func (r *AttendanceRecord) OpenBreak() *BreakRecord {
	for i := range r.Breaks {
		if r.Breaks[i].IsOpen() {
			return &r.Breaks[i]
		}
	}
	return nil
}

/// RecomputeTotalWork derives the worked duration: clock span minus the sum of
// closed breaks. It stays nil until both stamps exist.
func (r *AttendanceRecord) RecomputeTotalWork() {
	if r.ClockIn == nil || r.ClockOut == nil {
		r.TotalWorkSeconds = nil
		return
	}

	total := r.ClockOut.Sub(*r.ClockIn)
	for _, b := range r.Breaks {
		if b.EndTime != nil {
			total -= b.EndTime.Sub(b.StartTime)
		}
	}

	seconds := int64(total.Seconds())
	r.TotalWorkSeconds = &seconds
}

// RosterEntry is one employee row in the manager's daily view; Record is nil
// when the employee has not clocked in that day.
type RosterEntry struct {
	UserID   int64             `json:"user_id"`
	Username string            `json:"username"`
	FullName string            `json:"full_name"`
	Record   *AttendanceRecord `json:"record,omitempty"`
}

var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrRecordExists   = errors.New("attendance record already exists for that date")
	ErrBreakOpen      = errors.New("a break is already in progress")
)
