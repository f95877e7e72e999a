package user

import (
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
)

type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	List(filter Filter) ([]*User, error)
	CountUnapproved() (int64, error)
	Update(u *User) error
	Delete(id int64) error
}

type Service struct {
	repo       Repository
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a self-service account. The role is forced to employee and
// the account stays inactive until an HR actor approves it.
func (s *Service) Signup(dto SignupDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("signup validation failed", "error", err, "username", dto.Username)
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	gender := dto.Gender
	if gender == "" {
		gender = GenderNoAnswer
	}

	u := &User{
		Username:       dto.Username,
		Email:          dto.Email,
		PasswordHash:   hash,
		Role:           auth.RoleEmployee,
		EmployeeNumber: dto.EmployeeNumber,
		FullName:       dto.FullName,
		Gender:         gender,
		DepartmentID:   dto.DepartmentID,
		TeamID:         dto.TeamID,
		IsActive:       false,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create signup user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("user signed up, pending approval", "user_id", u.ID, "username", u.Username)
	return u.Deriveds(), nil
}

// CreateUser is the HR-side creation path; the account is active immediately
// and may carry any role.
func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("create user validation failed", "error", err, "username", dto.Username)
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	gender := dto.Gender
	if gender == "" {
		gender = GenderNoAnswer
	}

	u := &User{
		Username:       dto.Username,
		Email:          dto.Email,
		PasswordHash:   hash,
		Role:           dto.Role,
		EmployeeNumber: dto.EmployeeNumber,
		FullName:       dto.FullName,
		Gender:         gender,
		DepartmentID:   dto.DepartmentID,
		TeamID:         dto.TeamID,
		IsActive:       true,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u.Deriveds(), nil
}

func (s *Service) GetUser(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return u.Deriveds(), nil
}

func (s *Service) ListUsers(filter Filter) ([]*User, int64, error) {
	users, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, 0, err
	}

	for _, u := range users {
		u.Deriveds()
	}

	unapproved, err := s.repo.CountUnapproved()
	if err != nil {
		s.logger.Error("failed to count unapproved users", "error", err)
		return nil, 0, err
	}

	return users, unapproved, nil
}

// Approve activates a self-registered account. Approving an already active
// account is a benign no-op surfaced as a notice.
func (s *Service) Approve(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	if u.IsActive {
		s.logger.Info("user already approved", "user_id", id)
		return u.Deriveds(), nil
	}

	u.IsActive = true
	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to approve user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user approved", "user_id", id, "username", u.Username)
	return u.Deriveds(), nil
}

func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	if dto.Email != nil {
		u.Email = *dto.Email
	}
	if dto.EmployeeNumber != nil {
		u.EmployeeNumber = *dto.EmployeeNumber
	}
	if dto.FullName != nil {
		u.FullName = *dto.FullName
	}
	if dto.Gender != nil {
		u.Gender = *dto.Gender
	}
	if dto.DepartmentID != nil {
		u.DepartmentID = dto.DepartmentID
	}
	if dto.TeamID != nil {
		u.TeamID = dto.TeamID
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	return u.Deriveds(), nil
}

func (s *Service) DeleteUser(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
