package postgres

import (
	"errors"
	"strings"

	"github.com/frahmantamala/hr-attendance/internal/application"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) application.Repository {
	return &ApplicationRepository{db: db}
}

const applicantJoin = "LEFT JOIN users ON users.id = applications.applicant_id"

const applicantColumns = "applications.*, users.full_name AS applicant_name, " +
	"users.department_id AS applicant_department_id, users.team_id AS applicant_team_id"

func (r *ApplicationRepository) Create(a *application.Application) error {
	return r.db.Create(a).Error
}

func (r *ApplicationRepository) GetByID(id int64) (*application.Application, error) {
	var a application.Application
	err := r.db.Model(&application.Application{}).
		Select(applicantColumns).
		Joins(applicantJoin).
		Where("applications.id = ?", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) ListByApplicant(applicantID int64, filter application.Filter) ([]*application.Application, error) {
	query := r.db.Model(&application.Application{}).
		Select(applicantColumns).
		Joins(applicantJoin).
		Where("applications.applicant_id = ?", applicantID).
		Order("applications.start_datetime DESC")

	query = applyFilter(query, filter)

	var apps []*application.Application
	err := query.Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListForManager(departmentIDs, teamIDs []int64, excludeApplicantID int64, filter application.Filter) ([]*application.Application, error) {
	query := r.db.Model(&application.Application{}).
		Select(applicantColumns).
		Joins(applicantJoin).
		Where("applications.applicant_id <> ?", excludeApplicantID).
		Order("applications.status, applications.created_at DESC")

	// applicant belongs to a managed department or a managed team
	switch {
	case len(departmentIDs) > 0 && len(teamIDs) > 0:
		query = query.Where("users.department_id IN ? OR users.team_id IN ?", departmentIDs, teamIDs)
	case len(departmentIDs) > 0:
		query = query.Where("users.department_id IN ?", departmentIDs)
	case len(teamIDs) > 0:
		query = query.Where("users.team_id IN ?", teamIDs)
	default:
		return []*application.Application{}, nil
	}

	query = applyFilter(query, filter)

	var apps []*application.Application
	err := query.Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListForHr(filter application.Filter) ([]*application.Application, error) {
	query := r.db.Model(&application.Application{}).
		Select(applicantColumns).
		Joins(applicantJoin).
		Order("applications.status, applications.created_at DESC")

	if filter.Status != "" {
		query = query.Where("applications.status = ?", filter.Status)
	} else {
		query = query.Where("applications.status IN ?", application.HrVisibleStatuses)
	}

	filter.Status = "" // already applied
	query = applyFilter(query, filter)

	var apps []*application.Application
	err := query.Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) Update(a *application.Application) error {
	return r.db.Model(a).Updates(map[string]interface{}{
		"type":           a.Type,
		"start_datetime": a.StartDatetime,
		"end_datetime":   a.EndDatetime,
		"reason":         a.Reason,
	}).Error
}

func (r *ApplicationRepository) Delete(id int64) error {
	return r.db.Delete(&application.Application{}, id).Error
}

// TransitionStatus is the concurrency guard for every workflow edge: the
// UPDATE only matches while the row still holds the expected status, so the
// loser of a race sees zero affected rows.
func (r *ApplicationRepository) TransitionStatus(id int64, fromStatus string, updates map[string]interface{}) (bool, error) {
	result := r.db.Model(&application.Application{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ApplicationRepository) DepartmentManagerID(departmentID int64) (*int64, error) {
	var managerIDs []*int64
	err := r.db.Table("departments").Where("id = ?", departmentID).Pluck("manager_id", &managerIDs).Error
	if err != nil {
		return nil, err
	}
	if len(managerIDs) == 0 {
		return nil, nil
	}
	return managerIDs[0], nil
}

// applyFilter adds the shared list criteria. The start bound is inclusive and
// the end bound is next-day exclusive, both on start_datetime.
func applyFilter(query *gorm.DB, filter application.Filter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("applications.status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("applications.type = ?", filter.Type)
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(users.full_name) LIKE ?", pattern)
	}
	if filter.HasStart {
		query = query.Where("applications.start_datetime >= ?", filter.StartDate)
	}
	if filter.HasEnd {
		query = query.Where("applications.start_datetime < ?", filter.EndDate.AddDate(0, 0, 1))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	return query
}
