package user

import (
	"errors"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
)

type User struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"column:email"`
	PasswordHash   string    `json:"-" gorm:"column:password_hash;not null"`
	Role           string    `json:"role" gorm:"column:role;default:employee"`
	EmployeeNumber string    `json:"employee_number" gorm:"column:employee_number;uniqueIndex;not null"`
	DepartmentID   *int64    `json:"department_id,omitempty" gorm:"column:department_id"`
	TeamID         *int64    `json:"team_id,omitempty" gorm:"column:team_id"`
	FullName       string    `json:"full_name" gorm:"column:full_name;not null"`
	Gender         string    `json:"gender" gorm:"column:gender;default:no_answer"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`

	// Derived at read time from the role, never stored.
	IsStaff bool `json:"is_staff" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

// Deriveds fills the computed fields before the entity leaves the service.
func (u *User) Deriveds() *User {
	u.IsStaff = u.Role == auth.RoleHr
	return u
}

const (
	GenderMale     = "male"
	GenderFemale   = "female"
	GenderOther    = "other"
	GenderNoAnswer = "no_answer"
)

var Roles = []string{auth.RoleEmployee, auth.RoleManager, auth.RoleHr}

var Genders = []string{GenderMale, GenderFemale, GenderOther, GenderNoAnswer}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or employee number already taken")
)
