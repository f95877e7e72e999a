package user

import (
	"errors"
	"testing"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserService Suite")
}

type mockUserRepository struct {
	users  map[int64]*User
	nextID int64

	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  map[int64]*User{},
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(u *User) error {
	if m.returnError {
		return m.errorToReturn
	}
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.EmployeeNumber == u.EmployeeNumber {
			return ErrUserExists
		}
	}
	u.ID = m.nextID
	m.nextID++
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	u, exists := m.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) List(filter Filter) ([]*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	var out []*User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockUserRepository) CountUnapproved() (int64, error) {
	if m.returnError {
		return 0, m.errorToReturn
	}
	var count int64
	for _, u := range m.users {
		if !u.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepository) Update(u *User) error {
	if m.returnError {
		return m.errorToReturn
	}
	if _, exists := m.users[u.ID]; !exists {
		return ErrUserNotFound
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	delete(m.users, id)
	return nil
}

var _ = Describe("UserService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		service = NewService(mockRepo, logger.L(), bcrypt.MinCost)
	})

	signup := func(username, employeeNumber string) *User {
		u, err := service.Signup(SignupDTO{
			Username:       username,
			Password:       "password123",
			EmployeeNumber: employeeNumber,
			FullName:       "Kenji Sato",
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Signup", func() {
		It("should create an inactive employee account with a hashed password", func() {
			created := signup("employee1", "E0001")

			Expect(created.Role).To(Equal(auth.RoleEmployee))
			Expect(created.IsActive).To(BeFalse())
			Expect(created.IsStaff).To(BeFalse())
			Expect(created.Gender).To(Equal(GenderNoAnswer))

			stored := mockRepo.users[created.ID]
			Expect(stored.PasswordHash).NotTo(Equal("password123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123"))).To(Succeed())
		})

		It("should reject a short password", func() {
			_, err := service.Signup(SignupDTO{
				Username:       "employee1",
				Password:       "short",
				EmployeeNumber: "E0001",
				FullName:       "Kenji Sato",
			})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("at least 8 characters"))
			Expect(mockRepo.users).To(BeEmpty())
		})

		It("should surface a duplicate username", func() {
			signup("employee1", "E0001")

			_, err := service.Signup(SignupDTO{
				Username:       "employee1",
				Password:       "password123",
				EmployeeNumber: "E0002",
				FullName:       "Aoi Yamada",
			})

			Expect(err).To(Equal(ErrUserExists))
		})
	})

	Describe("CreateUser", func() {
		It("should create an immediately active account with the requested role", func() {
			created, err := service.CreateUser(CreateUserDTO{
				Username:       "hr_admin",
				Password:       "password123",
				Role:           auth.RoleHr,
				EmployeeNumber: "E0001",
				FullName:       "Hana Reyes",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Role).To(Equal(auth.RoleHr))
			Expect(created.IsActive).To(BeTrue())
			Expect(created.IsStaff).To(BeTrue())
		})

		It("should reject an unknown role", func() {
			_, err := service.CreateUser(CreateUserDTO{
				Username:       "someone",
				Password:       "password123",
				Role:           "superuser",
				EmployeeNumber: "E0001",
				FullName:       "Some One",
			})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.users).To(BeEmpty())
		})
	})

	Describe("Approve", func() {
		It("should activate a pending signup", func() {
			created := signup("employee1", "E0001")
			Expect(created.IsActive).To(BeFalse())

			approved, err := service.Approve(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.IsActive).To(BeTrue())
			Expect(mockRepo.users[created.ID].IsActive).To(BeTrue())
		})

		It("should treat approving an active account as a no-op", func() {
			created := signup("employee1", "E0001")
			_, err := service.Approve(created.ID)
			Expect(err).NotTo(HaveOccurred())

			again, err := service.Approve(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.IsActive).To(BeTrue())
		})

		It("should return not found for a missing user", func() {
			_, err := service.Approve(99999)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("user not found"))
		})
	})

	Describe("ListUsers", func() {
		It("should return the list together with the pending approval count", func() {
			signup("employee1", "E0001")
			signup("employee2", "E0002")
			created := signup("employee3", "E0003")
			_, err := service.Approve(created.ID)
			Expect(err).NotTo(HaveOccurred())

			users, unapproved, err := service.ListUsers(Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(3))
			Expect(unapproved).To(Equal(int64(2)))
		})
	})

	Describe("UpdateUser", func() {
		It("should apply only the provided fields", func() {
			created := signup("employee1", "E0001")

			newName := "Kenji S. Sato"
			updated, err := service.UpdateUser(created.ID, UpdateUserDTO{FullName: &newName})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FullName).To(Equal("Kenji S. Sato"))
			Expect(updated.EmployeeNumber).To(Equal("E0001"))
		})

		It("should reject an unknown gender", func() {
			created := signup("employee1", "E0001")

			bad := "unknown"
			_, err := service.UpdateUser(created.ID, UpdateUserDTO{Gender: &bad})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteUser", func() {
		It("should remove the account", func() {
			created := signup("employee1", "E0001")

			Expect(service.DeleteUser(created.ID)).NotTo(HaveOccurred())
			Expect(mockRepo.users).To(BeEmpty())
		})

		It("should return not found for a missing user", func() {
			err := service.DeleteUser(99999)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("user not found"))
		})
	})

	Describe("when the repository fails", func() {
		It("should surface the error from ListUsers", func() {
			mockRepo.returnError = true
			mockRepo.errorToReturn = errors.New("database error")

			_, _, err := service.ListUsers(Filter{})
			Expect(err).To(HaveOccurred())
		})
	})
})
