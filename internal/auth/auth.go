package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles are a fixed business classification assigned at account creation.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHr       = "hr"
)

// User is the authenticated actor placed into the request context. It carries
// the role plus the set of organizational units the user manages, which is
// everything the domain services need to authorize an operation.
type User struct {
	ID                   int64   `json:"id"`
	Username             string  `json:"username"`
	FullName             string  `json:"full_name"`
	Role                 string  `json:"role"`
	DepartmentID         *int64  `json:"department_id,omitempty"`
	TeamID               *int64  `json:"team_id,omitempty"`
	ManagedDepartmentIDs []int64 `json:"managed_department_ids,omitempty"`
	ManagedTeamIDs       []int64 `json:"managed_team_ids,omitempty"`
	IsActive             bool    `json:"is_active"`
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsHr() bool {
	return u.Role == RoleHr
}

// IsStaff is derived from the role at read time; it is never stored.
func (u *User) IsStaff() bool {
	return u.Role == RoleHr
}

func (u *User) ManagesDepartment(id int64) bool {
	for _, d := range u.ManagedDepartmentIDs {
		if d == id {
			return true
		}
	}
	return false
}

func (u *User) ManagesTeam(id int64) bool {
	for _, t := range u.ManagedTeamIDs {
		if t == id {
			return true
		}
	}
	return false
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
