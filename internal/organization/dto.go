package organization

import (
	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type CreateDepartmentDTO struct {
	Name      string `json:"name"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().NotBlank().MaxLength(100)
	return errOrNil(v.Validate())
}

// UpdateDepartmentDTO uses pointer fields so a missing field means "leave as
// is"; ClearManager removes the manager reference explicitly.
type UpdateDepartmentDTO struct {
	Name         *string `json:"name,omitempty"`
	ManagerID    *int64  `json:"manager_id,omitempty"`
	ClearManager bool    `json:"clear_manager,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).NotBlank().MaxLength(100)
	}
	return errOrNil(v.Validate())
}

type CreateTeamDTO struct {
	Name         string `json:"name"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	ManagerID    *int64 `json:"manager_id,omitempty"`
}

func (dto CreateTeamDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().NotBlank().MaxLength(100)
	return errOrNil(v.Validate())
}

type UpdateTeamDTO struct {
	Name            *string `json:"name,omitempty"`
	DepartmentID    *int64  `json:"department_id,omitempty"`
	ManagerID       *int64  `json:"manager_id,omitempty"`
	ClearDepartment bool    `json:"clear_department,omitempty"`
	ClearManager    bool    `json:"clear_manager,omitempty"`
}

func (dto UpdateTeamDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).NotBlank().MaxLength(100)
	}
	return errOrNil(v.Validate())
}

func errOrNil(err *internal.AppError) error {
	if err != nil {
		return err
	}
	return nil
}
