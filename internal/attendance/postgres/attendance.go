package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/attendance"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.Repository {
	return &AttendanceRepository{db: db}
}

const ownerJoin = "LEFT JOIN users ON users.id = attendance_records.user_id"

const ownerColumns = "attendance_records.*, users.full_name AS owner_name, " +
	"users.department_id AS owner_department_id, users.team_id AS owner_team_id"

func (r *AttendanceRepository) GetOrCreate(userID int64, date string) (*attendance.AttendanceRecord, error) {
	rec := &attendance.AttendanceRecord{UserID: userID, Date: date}

	// ON CONFLICT DO NOTHING: the loser of a concurrent create falls through
	// to the fetch below and loads the winner's row.
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}

	return r.GetForDate(userID, date)
}

func (r *AttendanceRepository) GetForDate(userID int64, date string) (*attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	err := r.db.Preload("Breaks").
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *AttendanceRepository) GetByID(id int64) (*attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	err := r.db.Model(&attendance.AttendanceRecord{}).
		Select(ownerColumns).
		Joins(ownerJoin).
		Preload("Breaks").
		Where("attendance_records.id = ?", id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *AttendanceRepository) ListByUser(userID int64, filter attendance.Filter) ([]*attendance.AttendanceRecord, error) {
	query := r.db.Model(&attendance.AttendanceRecord{}).
		Preload("Breaks").
		Where("user_id = ?", userID).
		Order("date DESC")

	query = applyFilter(query, filter, false)

	var records []*attendance.AttendanceRecord
	err := query.Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) ListAll(filter attendance.Filter) ([]*attendance.AttendanceRecord, error) {
	query := r.db.Model(&attendance.AttendanceRecord{}).
		Select(ownerColumns).
		Joins(ownerJoin).
		Preload("Breaks").
		Order("attendance_records.date DESC, attendance_records.user_id")

	query = applyFilter(query, filter, true)

	var records []*attendance.AttendanceRecord
	err := query.Find(&records).Error
	return records, err
}

// Roster lists every active employee of the departments with that day's
// record attached, record left nil for those who have not punched.
func (r *AttendanceRepository) Roster(departmentIDs []int64, date string) ([]*attendance.RosterEntry, error) {
	type memberRow struct {
		ID       int64
		Username string
		FullName string
	}

	var members []memberRow
	err := r.db.Table("users").
		Select("id, username, full_name").
		Where("department_id IN ? AND is_active = ?", departmentIDs, true).
		Order("id").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return []*attendance.RosterEntry{}, nil
	}

	memberIDs := make([]int64, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	var records []*attendance.AttendanceRecord
	err = r.db.Preload("Breaks").
		Where("user_id IN ? AND date = ?", memberIDs, date).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	recordsByUser := make(map[int64]*attendance.AttendanceRecord, len(records))
	for _, rec := range records {
		recordsByUser[rec.UserID] = rec
	}

	entries := make([]*attendance.RosterEntry, len(members))
	for i, m := range members {
		entries[i] = &attendance.RosterEntry{
			UserID:   m.ID,
			Username: m.Username,
			FullName: m.FullName,
			Record:   recordsByUser[m.ID],
		}
	}
	return entries, nil
}

func (r *AttendanceRepository) CountUnread(userID *int64) (int64, error) {
	query := r.db.Model(&attendance.AttendanceRecord{}).Where("is_read = ?", false)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *AttendanceRepository) Create(rec *attendance.AttendanceRecord) error {
	err := r.db.Create(rec).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return attendance.ErrRecordExists
	}
	return err
}

func (r *AttendanceRepository) UpdateFields(id int64, updates map[string]interface{}) error {
	return r.db.Model(&attendance.AttendanceRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *AttendanceRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attendance_record_id = ?", id).Delete(&attendance.BreakRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&attendance.AttendanceRecord{}, id).Error
	})
}

func (r *AttendanceRepository) SetClockIn(id int64, t time.Time) (bool, error) {
	result := r.db.Model(&attendance.AttendanceRecord{}).
		Where("id = ? AND clock_in IS NULL", id).
		Update("clock_in", t)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *AttendanceRepository) SetClockOut(id int64, t time.Time, totalSeconds int64) (bool, error) {
	result := r.db.Model(&attendance.AttendanceRecord{}).
		Where("id = ? AND clock_in IS NOT NULL AND clock_out IS NULL", id).
		Updates(map[string]interface{}{
			"clock_out":          t,
			"total_work_seconds": totalSeconds,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// StartBreak rechecks the open-break invariant before inserting. The partial
// unique index on (attendance_record_id) WHERE end_time IS NULL backs the
// invariant at the storage layer, so the loser of a concurrent start fails
// with a duplicate key.
func (r *AttendanceRepository) StartBreak(b *attendance.BreakRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var open int64
		err := tx.Model(&attendance.BreakRecord{}).
			Where("attendance_record_id = ? AND end_time IS NULL", b.AttendanceRecordID).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return attendance.ErrBreakOpen
		}

		err = tx.Create(b).Error
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return attendance.ErrBreakOpen
		}
		return err
	})
}

func (r *AttendanceRepository) CloseOpenBreak(recordID int64, end time.Time) (bool, error) {
	result := r.db.Model(&attendance.BreakRecord{}).
		Where("attendance_record_id = ? AND end_time IS NULL", recordID).
		Update("end_time", end)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func applyFilter(query *gorm.DB, filter attendance.Filter, joined bool) *gorm.DB {
	prefix := ""
	if joined {
		prefix = "attendance_records."
	}

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(users.full_name) LIKE ? OR LOWER(users.username) LIKE ?", pattern, pattern)
	}
	if filter.StartDate != "" {
		query = query.Where(prefix+"date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		query = query.Where(prefix+"date <= ?", filter.EndDate)
	}
	switch filter.ReadStatus {
	case "read":
		query = query.Where(prefix+"is_read = ?", true)
	case "unread":
		query = query.Where(prefix+"is_read = ?", false)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	return query
}
