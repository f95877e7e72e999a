package user

import (
	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

// SignupDTO is the self-service registration payload. Role and active state
// are not accepted from the caller: self-signup always yields an inactive
// employee account pending HR approval.
type SignupDTO struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Gender         string `json:"gender"`
	DepartmentID   *int64 `json:"department_id,omitempty"`
	TeamID         *int64 `json:"team_id,omitempty"`
}

func (dto SignupDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", dto.Username).Required().MaxLength(150)
	v.Field("password", dto.Password).Required()
	v.Field("employee_number", dto.EmployeeNumber).Required().MaxLength(20)
	v.Field("full_name", dto.FullName).Required().MaxLength(50)
	v.Field("gender", dto.Gender).OneOf(Genders...)
	if err := v.Validate(); err != nil {
		return err
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// CreateUserDTO is the HR-side creation payload; unlike signup it may assign
// any role and the account is active immediately.
type CreateUserDTO struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Gender         string `json:"gender"`
	DepartmentID   *int64 `json:"department_id,omitempty"`
	TeamID         *int64 `json:"team_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", dto.Username).Required().MaxLength(150)
	v.Field("password", dto.Password).Required()
	v.Field("role", dto.Role).Required().OneOf(Roles...)
	v.Field("employee_number", dto.EmployeeNumber).Required().MaxLength(20)
	v.Field("full_name", dto.FullName).Required().MaxLength(50)
	v.Field("gender", dto.Gender).OneOf(Genders...)
	return errOrNil(v.Validate())
}

// UpdateUserDTO covers HR profile edits. The role is an immutable business
// classification and is deliberately absent.
type UpdateUserDTO struct {
	Email          *string `json:"email,omitempty"`
	EmployeeNumber *string `json:"employee_number,omitempty"`
	FullName       *string `json:"full_name,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	TeamID         *int64  `json:"team_id,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FullName != nil {
		v.Field("full_name", *dto.FullName).Required().MaxLength(50)
	}
	if dto.EmployeeNumber != nil {
		v.Field("employee_number", *dto.EmployeeNumber).Required().MaxLength(20)
	}
	if dto.Gender != nil {
		v.Field("gender", *dto.Gender).OneOf(Genders...)
	}
	return errOrNil(v.Validate())
}

// Filter carries the HR profile list criteria. Query matches username or
// full name case-insensitively.
type Filter struct {
	Query        string
	Role         string
	DepartmentID *int64
	Approval     string // "", "approved", "unapproved"
	Limit        int
	Offset       int
}

func errOrNil(err *internal.AppError) error {
	if err != nil {
		return err
	}
	return nil
}
