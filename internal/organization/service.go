package organization

import (
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal"
)

type Repository interface {
	CreateDepartment(d *Department) error
	GetDepartment(id int64) (*Department, error)
	ListDepartments() ([]*Department, error)
	UpdateDepartment(d *Department) error
	DeleteDepartment(id int64) error

	CreateTeam(t *Team) error
	GetTeam(id int64) (*Team, error)
	ListTeams() ([]*Team, error)
	UpdateTeam(t *Team) error
	DeleteTeam(id int64) error

	// ManagedUnits returns the department and team IDs a user manages.
	ManagedUnits(userID int64) (departmentIDs []int64, teamIDs []int64, err error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("create department validation failed", "error", err)
		return nil, err
	}

	d := &Department{
		Name:      dto.Name,
		ManagerID: dto.ManagerID,
	}

	if err := s.repo.CreateDepartment(d); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "name", d.Name)
	return d, nil
}

func (s *Service) ListDepartments() ([]*Department, error) {
	return s.repo.ListDepartments()
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	d, err := s.repo.GetDepartment(id)
	if err != nil {
		return nil, internal.NewNotFoundError("department not found", internal.ErrCodeUnitNotFound)
	}
	return d, nil
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDepartment(id)
	if err != nil {
		return nil, internal.NewNotFoundError("department not found", internal.ErrCodeUnitNotFound)
	}

	if dto.Name != nil {
		d.Name = *dto.Name
	}
	if dto.ClearManager {
		d.ManagerID = nil
	} else if dto.ManagerID != nil {
		d.ManagerID = dto.ManagerID
	}

	if err := s.repo.UpdateDepartment(d); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}

	return d, nil
}

func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.repo.GetDepartment(id); err != nil {
		return internal.NewNotFoundError("department not found", internal.ErrCodeUnitNotFound)
	}

	if err := s.repo.DeleteDepartment(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id)
	return nil
}

func (s *Service) CreateTeam(dto CreateTeamDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("create team validation failed", "error", err)
		return nil, err
	}

	t := &Team{
		Name:         dto.Name,
		DepartmentID: dto.DepartmentID,
		ManagerID:    dto.ManagerID,
	}

	if err := s.repo.CreateTeam(t); err != nil {
		s.logger.Error("failed to create team", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("team created", "team_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *Service) ListTeams() ([]*Team, error) {
	return s.repo.ListTeams()
}

func (s *Service) GetTeam(id int64) (*Team, error) {
	t, err := s.repo.GetTeam(id)
	if err != nil {
		return nil, internal.NewNotFoundError("team not found", internal.ErrCodeUnitNotFound)
	}
	return t, nil
}

func (s *Service) UpdateTeam(id int64, dto UpdateTeamDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTeam(id)
	if err != nil {
		return nil, internal.NewNotFoundError("team not found", internal.ErrCodeUnitNotFound)
	}

	if dto.Name != nil {
		t.Name = *dto.Name
	}
	if dto.ClearDepartment {
		t.DepartmentID = nil
	} else if dto.DepartmentID != nil {
		t.DepartmentID = dto.DepartmentID
	}
	if dto.ClearManager {
		t.ManagerID = nil
	} else if dto.ManagerID != nil {
		t.ManagerID = dto.ManagerID
	}

	if err := s.repo.UpdateTeam(t); err != nil {
		s.logger.Error("failed to update team", "error", err, "team_id", id)
		return nil, err
	}

	return t, nil
}

func (s *Service) DeleteTeam(id int64) error {
	if _, err := s.repo.GetTeam(id); err != nil {
		return internal.NewNotFoundError("team not found", internal.ErrCodeUnitNotFound)
	}

	if err := s.repo.DeleteTeam(id); err != nil {
		s.logger.Error("failed to delete team", "error", err, "team_id", id)
		return err
	}

	s.logger.Info("team deleted", "team_id", id)
	return nil
}
