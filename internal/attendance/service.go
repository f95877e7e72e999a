package attendance

import (
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
)

type Repository interface {
	// GetOrCreate returns the user's record for the date, creating an empty
	// one when missing. The (user, date) unique constraint closes the
	// concurrent-create race: on conflict the existing row is loaded.
	GetOrCreate(userID int64, date string) (*AttendanceRecord, error)
	GetForDate(userID int64, date string) (*AttendanceRecord, error)
	GetByID(id int64) (*AttendanceRecord, error)
	ListByUser(userID int64, filter Filter) ([]*AttendanceRecord, error)
	ListAll(filter Filter) ([]*AttendanceRecord, error)
	Roster(departmentIDs []int64, date string) ([]*RosterEntry, error)
	CountUnread(userID *int64) (int64, error)

	Create(rec *AttendanceRecord) error
	UpdateFields(id int64, updates map[string]interface{}) error
	Delete(id int64) error

	// SetClockIn stamps clock_in only while it is still empty.
	SetClockIn(id int64, t time.Time) (bool, error)
	// SetClockOut stamps clock_out and the computed total only while the
	// record is clocked in and not yet clocked out.
	SetClockOut(id int64, t time.Time, totalSeconds int64) (bool, error)

	// StartBreak inserts an open break; the partial unique index rejects a
	// second open break with ErrBreakOpen.
	StartBreak(b *BreakRecord) error
	// CloseOpenBreak stamps the record's open break, reporting false when
	// there is none.
	CloseOpenBreak(recordID int64, end time.Time) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

func (s *Service) today() string {
	return s.now().Format(DateLayout)
}

// Today returns the actor's record for the current date, nil when they have
// not interacted with the dashboard yet.
func (s *Service) Today(actor *auth.User) (*AttendanceRecord, error) {
	rec, err := s.repo.GetForDate(actor.ID, s.today())
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ClockIn stamps the start of the working day. Clocking in twice is a benign
// warning, not an error: the first stamp stands.
func (s *Service) ClockIn(actor *auth.User) (*AttendanceRecord, error) {
	rec, err := s.repo.GetOrCreate(actor.ID, s.today())
	if err != nil {
		s.logger.Error("failed to load today's record", "error", err, "user_id", actor.ID)
		return nil, err
	}

	if rec.ClockIn != nil {
		return nil, internal.NewBlockedActionError("already clocked in today", internal.ErrCodeAlreadyClockedIn)
	}

	ok, err := s.repo.SetClockIn(rec.ID, s.now())
	if err != nil {
		s.logger.Error("clock in failed", "error", err, "record_id", rec.ID)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("already clocked in today", internal.ErrCodeAlreadyClockedIn)
	}

	s.logger.Info("clocked in", "user_id", actor.ID, "record_id", rec.ID)
	return s.repo.GetByID(rec.ID)
}

func (s *Service) ClockOut(actor *auth.User) (*AttendanceRecord, error) {
	rec, err := s.repo.GetForDate(actor.ID, s.today())
	if err != nil || rec.ClockIn == nil {
		return nil, internal.NewBlockedActionError("not clocked in today", internal.ErrCodeNotClockedIn)
	}
	if rec.ClockOut != nil {
		return nil, internal.NewBlockedActionError("already clocked out today", internal.ErrCodeAlreadyClockedOut)
	}
	if rec.OpenBreak() != nil {
		return nil, internal.NewBlockedActionError("end the current break before clocking out", internal.ErrCodeBreakOpen)
	}

	now := s.now()
	rec.ClockOut = &now
	rec.RecomputeTotalWork()

	ok, err := s.repo.SetClockOut(rec.ID, now, *rec.TotalWorkSeconds)
	if err != nil {
		s.logger.Error("clock out failed", "error", err, "record_id", rec.ID)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("already clocked out today", internal.ErrCodeAlreadyClockedOut)
	}

	s.logger.Info("clocked out", "user_id", actor.ID, "record_id", rec.ID, "total_seconds", *rec.TotalWorkSeconds)
	return s.repo.GetByID(rec.ID)
}

func (s *Service) StartBreak(actor *auth.User) (*AttendanceRecord, error) {
	rec, err := s.repo.GetForDate(actor.ID, s.today())
	if err != nil || rec.ClockIn == nil {
		return nil, internal.NewBlockedActionError("not clocked in today", internal.ErrCodeNotClockedIn)
	}
	if rec.ClockOut != nil {
		return nil, internal.NewBlockedActionError("already clocked out today", internal.ErrCodeAlreadyClockedOut)
	}
	if rec.OpenBreak() != nil {
		return nil, internal.NewBlockedActionError("a break is already in progress", internal.ErrCodeBreakOpen)
	}

	b := &BreakRecord{
		AttendanceRecordID: rec.ID,
		StartTime:          s.now(),
	}
	if err := s.repo.StartBreak(b); err != nil {
		if errors.Is(err, ErrBreakOpen) {
			return nil, internal.NewBlockedActionError("a break is already in progress", internal.ErrCodeBreakOpen)
		}
		s.logger.Error("start break failed", "error", err, "record_id", rec.ID)
		return nil, err
	}

	s.logger.Info("break started", "user_id", actor.ID, "record_id", rec.ID)
	return s.repo.GetByID(rec.ID)
}

func (s *Service) EndBreak(actor *auth.User) (*AttendanceRecord, error) {
	rec, err := s.repo.GetForDate(actor.ID, s.today())
	if err != nil {
		return nil, internal.NewBlockedActionError("not clocked in today", internal.ErrCodeNotClockedIn)
	}

	ok, err := s.repo.CloseOpenBreak(rec.ID, s.now())
	if err != nil {
		s.logger.Error("end break failed", "error", err, "record_id", rec.ID)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("no break in progress", internal.ErrCodeNoOpenBreak)
	}

	// The record may already carry a clock-out stamp (HR can edit while a
	// break is open), so the total has to be refreshed with the break closed.
	rec, err = s.repo.GetByID(rec.ID)
	if err != nil {
		return nil, err
	}
	if rec.ClockOut != nil {
		rec.RecomputeTotalWork()
		updates := map[string]interface{}{"total_work_seconds": nil}
		if rec.TotalWorkSeconds != nil {
			updates["total_work_seconds"] = *rec.TotalWorkSeconds
		}
		if err := s.repo.UpdateFields(rec.ID, updates); err != nil {
			s.logger.Error("total recompute failed", "error", err, "record_id", rec.ID)
			return nil, err
		}
	}

	s.logger.Info("break ended", "user_id", actor.ID, "record_id", rec.ID)
	return s.repo.GetByID(rec.ID)
}

// UpdateNote sets the free-form note on today's record, creating the record
// when the user has not clocked anything yet.
func (s *Service) UpdateNote(actor *auth.User, dto UpdateNoteDTO) (*AttendanceRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetOrCreate(actor.ID, s.today())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(rec.ID, map[string]interface{}{"note": dto.Note}); err != nil {
		s.logger.Error("update note failed", "error", err, "record_id", rec.ID)
		return nil, err
	}

	return s.repo.GetByID(rec.ID)
}

func (s *Service) ListMine(actor *auth.User, filter Filter) ([]*AttendanceRecord, int64, error) {
	records, err := s.repo.ListByUser(actor.ID, filter)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(&actor.ID)
	if err != nil {
		return nil, 0, err
	}

	return records, unread, nil
}

func (s *Service) Get(actor *auth.User, id int64) (*AttendanceRecord, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
	}

	if !auth.CanViewAttendance(actor, rec.UserID, rec.OwnerDepartmentID, rec.OwnerTeamID) {
		s.logger.Warn("attendance access denied", "record_id", id, "actor_id", actor.ID)
		return nil, internal.NewForbiddenError("not allowed to view this record", internal.ErrCodeUnauthorizedAccess)
	}

	return rec, nil
}

// Roster is the manager's daily view: every employee of the managed
// departments with that day's record attached, optionally narrowed to those
// who have or have not submitted anything.
func (s *Service) Roster(actor *auth.User, date string, submitted string) ([]*RosterEntry, error) {
	if date == "" {
		date = s.today()
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, internal.NewValidationFieldError("date", "date must be formatted YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}

	if len(actor.ManagedDepartmentIDs) == 0 {
		return []*RosterEntry{}, nil
	}

	entries, err := s.repo.Roster(actor.ManagedDepartmentIDs, date)
	if err != nil {
		s.logger.Error("roster query failed", "error", err, "date", date)
		return nil, err
	}

	switch submitted {
	case "submitted":
		entries = filterRoster(entries, func(e *RosterEntry) bool { return e.Record != nil })
	case "unsubmitted":
		entries = filterRoster(entries, func(e *RosterEntry) bool { return e.Record == nil })
	}

	return entries, nil
}

func filterRoster(entries []*RosterEntry, keep func(*RosterEntry) bool) []*RosterEntry {
	filtered := make([]*RosterEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (s *Service) ListAll(filter Filter) ([]*AttendanceRecord, int64, error) {
	records, err := s.repo.ListAll(filter)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(nil)
	if err != nil {
		return nil, 0, err
	}

	return records, unread, nil
}

// CreateRecord is the HR manual-entry path for days an employee could not
// punch. A record already existing for that (user, date) is a conflict.
func (s *Service) CreateRecord(dto CreateRecordDTO) (*AttendanceRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec := &AttendanceRecord{
		UserID:   dto.UserID,
		Date:     dto.Date,
		ClockIn:  dto.ClockIn,
		ClockOut: dto.ClockOut,
		Note:     dto.Note,
	}
	rec.RecomputeTotalWork()

	if err := s.repo.Create(rec); err != nil {
		if errors.Is(err, ErrRecordExists) {
			return nil, internal.NewConflictError("a record already exists for that user and date", internal.ErrCodeAttendanceExists)
		}
		s.logger.Error("manual record creation failed", "error", err, "user_id", dto.UserID, "date", dto.Date)
		return nil, err
	}

	s.logger.Info("attendance record created manually", "record_id", rec.ID, "user_id", dto.UserID, "date", dto.Date)
	return s.repo.GetByID(rec.ID)
}

// UpdateRecord edits a record's stamps or note. A record marked as read is
// locked: HR must unmark it before changing anything.
func (s *Service) UpdateRecord(id int64, dto UpdateRecordDTO) (*AttendanceRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
	}

	if rec.IsRead {
		return nil, internal.NewBlockedActionError("record is confirmed; unmark it before editing", internal.ErrCodeRecordConfirmed)
	}

	if dto.ClockIn != nil {
		rec.ClockIn = dto.ClockIn
	}
	if dto.ClockOut != nil {
		rec.ClockOut = dto.ClockOut
	}
	if dto.Note != nil {
		rec.Note = *dto.Note
	}

	if rec.ClockIn != nil && rec.ClockOut != nil && rec.ClockOut.Before(*rec.ClockIn) {
		return nil, internal.NewValidationFieldError("clock_out", "clock out must not be before clock in", internal.ErrCodeInvalidDate)
	}

	rec.RecomputeTotalWork()

	updates := map[string]interface{}{
		"clock_in":  rec.ClockIn,
		"clock_out": rec.ClockOut,
		"note":      rec.Note,
	}
	if rec.TotalWorkSeconds != nil {
		updates["total_work_seconds"] = *rec.TotalWorkSeconds
	} else {
		updates["total_work_seconds"] = nil
	}

	if err := s.repo.UpdateFields(id, updates); err != nil {
		s.logger.Error("record update failed", "error", err, "record_id", id)
		return nil, err
	}

	return s.repo.GetByID(id)
}

func (s *Service) DeleteRecord(id int64) error {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
	}

	if rec.IsRead {
		return internal.NewBlockedActionError("record is confirmed; unmark it before deleting", internal.ErrCodeRecordConfirmed)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("record deletion failed", "error", err, "record_id", id)
		return err
	}

	s.logger.Info("attendance record deleted", "record_id", id)
	return nil
}

// MarkRead stamps the HR confirmation on a record, locking it against edits.
func (s *Service) MarkRead(actor *auth.User, id int64) (*AttendanceRecord, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
	}

	now := s.now()
	err := s.repo.UpdateFields(id, map[string]interface{}{
		"is_read": true,
		"read_by": actor.ID,
		"read_at": now,
	})
	if err != nil {
		s.logger.Error("mark read failed", "error", err, "record_id", id)
		return nil, err
	}

	return s.repo.GetByID(id)
}

func (s *Service) UnmarkRead(id int64) (*AttendanceRecord, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.NewNotFoundError("attendance record not found", internal.ErrCodeAttendanceNotFound)
	}

	err := s.repo.UpdateFields(id, map[string]interface{}{
		"is_read": false,
		"read_by": nil,
		"read_at": nil,
	})
	if err != nil {
		s.logger.Error("unmark read failed", "error", err, "record_id", id)
		return nil, err
	}

	return s.repo.GetByID(id)
}
