package postgres

import (
	"errors"

	"github.com/frahmantamala/hr-attendance/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.Repository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) CreateDepartment(d *organization.Department) error {
	err := r.db.Create(d).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return organization.ErrDepartmentExists
	}
	return err
}

func (r *OrganizationRepository) GetDepartment(id int64) (*organization.Department, error) {
	var d organization.Department
	err := r.db.Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, organization.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *OrganizationRepository) ListDepartments() ([]*organization.Department, error) {
	var departments []*organization.Department
	err := r.db.Order("id").Find(&departments).Error
	return departments, err
}

func (r *OrganizationRepository) UpdateDepartment(d *organization.Department) error {
	// Updates with a map so a nil manager clears the column instead of being
	// skipped the way Save skips zero values.
	return r.db.Model(d).Updates(map[string]interface{}{
		"name":       d.Name,
		"manager_id": d.ManagerID,
	}).Error
}

func (r *OrganizationRepository) DeleteDepartment(id int64) error {
	return r.db.Delete(&organization.Department{}, id).Error
}

func (r *OrganizationRepository) CreateTeam(t *organization.Team) error {
	return r.db.Create(t).Error
}

func (r *OrganizationRepository) GetTeam(id int64) (*organization.Team, error) {
	var t organization.Team
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, organization.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *OrganizationRepository) ListTeams() ([]*organization.Team, error) {
	var teams []*organization.Team
	err := r.db.Order("id").Find(&teams).Error
	return teams, err
}

func (r *OrganizationRepository) UpdateTeam(t *organization.Team) error {
	return r.db.Model(t).Updates(map[string]interface{}{
		"name":          t.Name,
		"department_id": t.DepartmentID,
		"manager_id":    t.ManagerID,
	}).Error
}

func (r *OrganizationRepository) DeleteTeam(id int64) error {
	return r.db.Delete(&organization.Team{}, id).Error
}

func (r *OrganizationRepository) ManagedUnits(userID int64) ([]int64, []int64, error) {
	var departmentIDs []int64
	if err := r.db.Model(&organization.Department{}).Where("manager_id = ?", userID).Pluck("id", &departmentIDs).Error; err != nil {
		return nil, nil, err
	}

	var teamIDs []int64
	if err := r.db.Model(&organization.Team{}).Where("manager_id = ?", userID).Pluck("id", &teamIDs).Error; err != nil {
		return nil, nil, err
	}

	return departmentIDs, teamIDs, nil
}
