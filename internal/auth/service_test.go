package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockAuthRepository struct {
	hashes        map[string]string // username -> password hash
	userIDs       map[string]int64  // username -> userID
	usersByID     map[int64]*User
	passwords     map[int64]string // userID -> last stored hash
	returnError   bool
	errorToReturn error
}

func newMockAuthRepository() *mockAuthRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	return &mockAuthRepository{
		hashes: map[string]string{
			"employee1":   string(hashedPassword),
			"eng_manager": string(hashedPassword),
			"pending_guy": string(hashedPassword),
		},
		userIDs: map[string]int64{
			"employee1":   1,
			"eng_manager": 2,
			"pending_guy": 3,
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Username: "employee1", Role: RoleEmployee, IsActive: true},
			2: {ID: 2, Username: "eng_manager", Role: RoleManager, IsActive: true, ManagedDepartmentIDs: []int64{1}},
			3: {ID: 3, Username: "pending_guy", Role: RoleEmployee, IsActive: false},
		},
		passwords: map[int64]string{},
	}
}

func (m *mockAuthRepository) GetCredentials(username string) (string, int64, bool, error) {
	if m.returnError {
		return "", 0, false, m.errorToReturn
	}

	hash, exists := m.hashes[username]
	if !exists {
		return "", 0, false, errors.New("user not found")
	}
	userID := m.userIDs[username]
	return hash, userID, m.usersByID[userID].IsActive, nil
}

func (m *mockAuthRepository) GetUserByID(userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthRepository) UpdatePassword(userID int64, passwordHash string) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.passwords[userID] = passwordHash
	return nil
}

func (m *mockAuthRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockAuthRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen, bcrypt.DefaultCost)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				dto := LoginDTO{
					Username: "employee1",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			})

			ginkgo.It("should generate a token carrying the user id", func() {
				dto := LoginDTO{
					Username: "eng_manager",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("2"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for an unknown username", func() {
				dto := LoginDTO{
					Username: "nonexistent",
					Password: "any_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for a wrong password", func() {
				dto := LoginDTO{
					Username: "employee1",
					Password: "wrong_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the account has not been approved", func() {
			ginkgo.It("should refuse to authenticate even with the right password", func() {
				dto := LoginDTO{
					Username: "pending_guy",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty username", func() {
				dto := LoginDTO{
					Username: "",
					Password: "password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("username is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return validation error for empty password", func() {
				dto := LoginDTO{
					Username: "employee1",
					Password: "",
				}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				mockRepo.setError(errors.New("database error"))
				dto := LoginDTO{
					Username: "employee1",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Username: "employee1",
				Password: "correct_password",
			}
			tokens, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.Context("when refresh token is valid", func() {
			ginkgo.It("should return a new token pair for the same user", func() {
				newTokens, err := service.RefreshTokens(validRefreshToken)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(newTokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(newTokens.RefreshToken).ToNot(gomega.BeEmpty())

				claims, err := service.ValidateAccessToken(newTokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("1"))
			})
		})

		ginkgo.Context("when refresh token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				tokens, err := service.RefreshTokens("invalid.token.format")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for expired token", func() {
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
				expiredToken, err := expiredTokenGen.GenerateRefreshToken("1")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				tokens, err := service.RefreshTokens(expiredToken)

				gomega.Expect(err).To(gomega.Or(gomega.Equal(ErrTokenExpired), gomega.Equal(ErrInvalidToken)))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("ResolveUser", func() {
		ginkgo.It("should load the actor with managed units", func() {
			user, err := service.ResolveUser("2")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.Username).To(gomega.Equal("eng_manager"))
			gomega.Expect(user.ManagedDepartmentIDs).To(gomega.ContainElement(int64(1)))
		})

		ginkgo.It("should refuse an inactive account", func() {
			user, err := service.ResolveUser("3")

			gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
			gomega.Expect(user).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrInvalidToken for a non-numeric subject", func() {
			user, err := service.ResolveUser("not-a-number")

			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			gomega.Expect(user).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("should store a new hash when the current password matches", func() {
			err := service.ChangePassword(1, ChangePasswordDTO{
				CurrentPassword: "correct_password",
				NewPassword:     "brand_new_password",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			stored := mockRepo.passwords[1]
			gomega.Expect(stored).ToNot(gomega.BeEmpty())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(stored), []byte("brand_new_password"))).To(gomega.Succeed())
		})

		ginkgo.It("should reject a wrong current password", func() {
			err := service.ChangePassword(1, ChangePasswordDTO{
				CurrentPassword: "wrong_password",
				NewPassword:     "brand_new_password",
			})

			gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			gomega.Expect(mockRepo.passwords).ToNot(gomega.HaveKey(int64(1)))
		})

		ginkgo.It("should reject a short new password", func() {
			err := service.ChangePassword(1, ChangePasswordDTO{
				CurrentPassword: "correct_password",
				NewPassword:     "short",
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("at least 8 characters"))
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret-key"
		refreshSecret string        = "test-refresh-secret-key"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
	})

	ginkgo.Describe("GenerateAccessToken", func() {
		ginkgo.It("should generate valid access token", func() {
			token, err := tokenGen.GenerateAccessToken("123")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("123"))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(accessTTL), time.Minute))
		})
	})

	ginkgo.Describe("GenerateRefreshToken", func() {
		ginkgo.It("should generate valid refresh token", func() {
			token, err := tokenGen.GenerateRefreshToken("456")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("456"))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(refreshTTL), time.Minute))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.Context("with invalid token", func() {
			ginkgo.It("should return error for malformed token", func() {
				claims, err := tokenGen.ValidateToken("invalid.token.here")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for empty token", func() {
				claims, err := tokenGen.ValidateToken("")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})

		ginkgo.Context("with expired token", func() {
			ginkgo.It("should return ErrTokenExpired", func() {
				expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
				token, err := expiredGen.GenerateAccessToken("123")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := tokenGen.ValidateToken(token)

				gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})
})

var _ = ginkgo.Describe("LoginDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should accept a complete payload", func() {
			dto := LoginDTO{
				Username: "employee1",
				Password: "secure_password",
			}

			gomega.Expect(dto.Validate()).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an empty username", func() {
			dto := LoginDTO{Password: "password"}

			err := dto.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("username is required"))
		})

		ginkgo.It("should reject an empty password", func() {
			dto := LoginDTO{Username: "employee1"}

			err := dto.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("password is required"))
		})
	})
})
