package postgres

import (
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/user"
	"gorm.io/gorm"
)

// AuthRepository implements auth.Repository on top of the users table plus
// the manager columns of departments and teams.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(username string) (string, int64, bool, error) {
	var u user.User
	err := r.db.Select("id", "password_hash", "is_active").
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return "", 0, false, err
	}
	return u.PasswordHash, u.ID, u.IsActive, nil
}

func (r *AuthRepository) GetUserByID(userID int64) (*auth.User, error) {
	var u user.User
	if err := r.db.Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}

	actor := &auth.User{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		TeamID:       u.TeamID,
		IsActive:     u.IsActive,
	}

	if actor.IsManager() {
		if err := r.db.Table("departments").
			Where("manager_id = ?", userID).
			Pluck("id", &actor.ManagedDepartmentIDs).Error; err != nil {
			return nil, err
		}
		if err := r.db.Table("teams").
			Where("manager_id = ?", userID).
			Pluck("id", &actor.ManagedTeamIDs).Error; err != nil {
			return nil, err
		}
	}

	return actor, nil
}

func (r *AuthRepository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}
