package organization

import (
	"errors"
	"time"
)

// Department is a top level organizational unit. The manager reference is
// optional and the manager does not have to be a member of the department.
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	ManagerID *int64    `json:"manager_id,omitempty" gorm:"column:manager_id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Department) TableName() string {
	return "departments"
}

// Team is a sub-unit, optionally attached to a department.
type Team struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	DepartmentID *int64    `json:"department_id,omitempty" gorm:"column:department_id"`
	ManagerID    *int64    `json:"manager_id,omitempty" gorm:"column:manager_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Team) TableName() string {
	return "teams"
}

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrDepartmentExists   = errors.New("department name already taken")
)
