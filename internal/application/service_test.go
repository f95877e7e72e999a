package application_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/application"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
)

func TestApplicationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Application Service Suite")
}

// Mock repository for testing
type mockApplicationRepository struct {
	applications      map[int64]*application.Application
	departmentManager map[int64]*int64
	createError       error
	transitionError   error
	nextID            int64
}

func newMockApplicationRepository() *mockApplicationRepository {
	return &mockApplicationRepository{
		applications:      make(map[int64]*application.Application),
		departmentManager: make(map[int64]*int64),
		nextID:            1,
	}
}

func (m *mockApplicationRepository) Create(a *application.Application) error {
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	copied := *a
	m.applications[a.ID] = &copied
	return nil
}

func (m *mockApplicationRepository) GetByID(id int64) (*application.Application, error) {
	a, exists := m.applications[id]
	if !exists {
		return nil, application.ErrApplicationNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockApplicationRepository) ListByApplicant(applicantID int64, filter application.Filter) ([]*application.Application, error) {
	var result []*application.Application
	for _, a := range m.applications {
		if a.ApplicantID == applicantID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockApplicationRepository) ListForManager(departmentIDs, teamIDs []int64, excludeApplicantID int64, filter application.Filter) ([]*application.Application, error) {
	inSet := func(set []int64, id *int64) bool {
		if id == nil {
			return false
		}
		for _, v := range set {
			if v == *id {
				return true
			}
		}
		return false
	}

	var result []*application.Application
	for _, a := range m.applications {
		if a.ApplicantID == excludeApplicantID {
			continue
		}
		if inSet(departmentIDs, a.ApplicantDepartmentID) || inSet(teamIDs, a.ApplicantTeamID) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockApplicationRepository) ListForHr(filter application.Filter) ([]*application.Application, error) {
	visible := map[string]bool{
		application.StatusPendingHr: true,
		application.StatusApproved:  true,
		application.StatusRejected:  true,
	}
	var result []*application.Application
	for _, a := range m.applications {
		if visible[a.Status] {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockApplicationRepository) Update(a *application.Application) error {
	stored, exists := m.applications[a.ID]
	if !exists {
		return application.ErrApplicationNotFound
	}
	stored.Type = a.Type
	stored.StartDatetime = a.StartDatetime
	stored.EndDatetime = a.EndDatetime
	stored.Reason = a.Reason
	return nil
}

func (m *mockApplicationRepository) Delete(id int64) error {
	delete(m.applications, id)
	return nil
}

func (m *mockApplicationRepository) TransitionStatus(id int64, fromStatus string, updates map[string]interface{}) (bool, error) {
	if m.transitionError != nil {
		return false, m.transitionError
	}
	a, exists := m.applications[id]
	if !exists || a.Status != fromStatus {
		return false, nil
	}

	for column, value := range updates {
		switch column {
		case "status":
			a.Status = value.(string)
		case "manager_approver_id":
			a.ManagerApproverID = toInt64Ptr(value)
		case "manager_approved_at":
			a.ManagerApprovedAt = toTimePtr(value)
		case "hr_approver_id":
			a.HrApproverID = toInt64Ptr(value)
		case "hr_approved_at":
			a.HrApprovedAt = toTimePtr(value)
		case "rejection_reason":
			a.RejectionReason = toStringPtr(value)
		}
	}
	return true, nil
}

func toInt64Ptr(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	n := v.(int64)
	return &n
}

func toTimePtr(v interface{}) *time.Time {
	if v == nil {
		return nil
	}
	t := v.(time.Time)
	return &t
}

func toStringPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func (m *mockApplicationRepository) DepartmentManagerID(departmentID int64) (*int64, error) {
	return m.departmentManager[departmentID], nil
}

// Mock publisher recording events synchronously
type mockPublisher struct {
	published    []events.Event
	publishError error
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	if m.publishError != nil {
		return m.publishError
	}
	m.published = append(m.published, event)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("ApplicationService", func() {
	var (
		service   *application.Service
		mockRepo  *mockApplicationRepository
		publisher *mockPublisher
		fixedTime time.Time

		employee *auth.User
		manager  *auth.User
		hr       *auth.User
	)

	newApplication := func(applicantID int64, status string, departmentID *int64) *application.Application {
		a := &application.Application{
			ApplicantID:           applicantID,
			Type:                  application.TypePaidLeave,
			StartDatetime:         fixedTime.AddDate(0, 0, 7),
			Reason:                "family trip",
			Status:                application.StatusPendingManager,
			ApplicantDepartmentID: departmentID,
		}
		Expect(mockRepo.Create(a)).To(Succeed())
		mockRepo.applications[a.ID].Status = status
		mockRepo.applications[a.ID].ApplicantDepartmentID = departmentID
		a.Status = status
		return a
	}

	BeforeEach(func() {
		mockRepo = newMockApplicationRepository()
		publisher = &mockPublisher{}
		fixedTime = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = application.NewService(mockRepo, publisher, logger, func() time.Time { return fixedTime })

		employee = &auth.User{ID: 1, Username: "sato", FullName: "Sato Taro", Role: auth.RoleEmployee, DepartmentID: int64Ptr(10), IsActive: true}
		manager = &auth.User{ID: 2, Username: "suzuki", FullName: "Suzuki Hana", Role: auth.RoleManager, ManagedDepartmentIDs: []int64{10}, IsActive: true}
		hr = &auth.User{ID: 3, Username: "tanaka", FullName: "Tanaka Yui", Role: auth.RoleHr, IsActive: true}
	})

	Describe("Submit", func() {
		It("should create a pending_manager application", func() {
			dto := application.CreateApplicationDTO{
				Type:          application.TypePaidLeave,
				StartDatetime: fixedTime.AddDate(0, 0, 7),
				Reason:        "family trip",
			}

			result, err := service.Submit(context.Background(), employee, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusPendingManager))
			Expect(result.ApplicantID).To(Equal(employee.ID))
			Expect(result.ID).To(BeNumerically(">", 0))
		})

		It("should notify the department manager", func() {
			mockRepo.departmentManager[10] = int64Ptr(manager.ID)
			dto := application.CreateApplicationDTO{
				Type:          application.TypeRemote,
				StartDatetime: fixedTime.AddDate(0, 0, 1),
				Reason:        "working from home",
			}

			_, err := service.Submit(context.Background(), employee, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			submitted, ok := publisher.published[0].(events.ApplicationSubmitted)
			Expect(ok).To(BeTrue())
			Expect(submitted.ManagerID).To(Equal(manager.ID))
			Expect(submitted.ApplicantID).To(Equal(employee.ID))
		})

		It("should skip the notification when the department has no manager", func() {
			dto := application.CreateApplicationDTO{
				Type:          application.TypeLate,
				StartDatetime: fixedTime,
				Reason:        "train delay",
			}

			_, err := service.Submit(context.Background(), employee, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(BeEmpty())
		})

		It("should reject a blank reason", func() {
			dto := application.CreateApplicationDTO{
				Type:          application.TypePaidLeave,
				StartDatetime: fixedTime,
				Reason:        "   ",
			}

			result, err := service.Submit(context.Background(), employee, dto)

			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(mockRepo.applications).To(BeEmpty())
		})

		It("should reject an unknown type", func() {
			dto := application.CreateApplicationDTO{
				Type:          "sabbatical",
				StartDatetime: fixedTime,
				Reason:        "long break",
			}

			_, err := service.Submit(context.Background(), employee, dto)

			Expect(err).To(HaveOccurred())
		})

		It("should reject end before start", func() {
			end := fixedTime.AddDate(0, 0, -1)
			dto := application.CreateApplicationDTO{
				Type:          application.TypeBusinessTrip,
				StartDatetime: fixedTime,
				EndDatetime:   &end,
				Reason:        "client visit",
			}

			_, err := service.Submit(context.Background(), employee, dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("ApproveByManager", func() {
		It("should move pending_manager to pending_hr with approver stamps", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))

			result, err := service.ApproveByManager(manager, a.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusPendingHr))
			Expect(result.ManagerApproverID).To(Equal(int64Ptr(manager.ID)))
			Expect(result.ManagerApprovedAt).ToNot(BeNil())
			Expect(result.ManagerApprovedAt.Equal(fixedTime)).To(BeTrue())
			Expect(result.RejectionReason).To(BeNil())
		})

		It("should return a blocked warning when the application is already under HR review", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))

			_, err := service.ApproveByManager(manager, a.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
			Expect(mockRepo.applications[a.ID].Status).To(Equal(application.StatusPendingHr))
		})

		It("should refuse a manager outside the applicant's units", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(99))

			_, err := service.ApproveByManager(manager, a.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should refuse a manager acting on their own application", func() {
			a := newApplication(manager.ID, application.StatusPendingManager, int64Ptr(10))

			_, err := service.ApproveByManager(manager, a.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("should take the illegal-state branch when losing a concurrent race", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))
			// another request wins between the read and the guarded update
			mockRepo.applications[a.ID].Status = application.StatusPendingHr

			_, err := service.ApproveByManager(manager, a.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
		})
	})

	Describe("ApproveByHr", func() {
		It("should move pending_hr to approved and notify the applicant", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))

			result, err := service.ApproveByHr(context.Background(), hr, a.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusApproved))
			Expect(result.HrApproverID).To(Equal(int64Ptr(hr.ID)))
			Expect(result.HrApprovedAt).ToNot(BeNil())

			Expect(publisher.published).To(HaveLen(1))
			approved, ok := publisher.published[0].(events.ApplicationHrApproved)
			Expect(ok).To(BeTrue())
			Expect(approved.ApplicantID).To(Equal(employee.ID))
		})

		It("should return a blocked warning while still pending manager", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))

			_, err := service.ApproveByHr(context.Background(), hr, a.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
			Expect(publisher.published).To(BeEmpty())
		})
	})

	Describe("Reject", func() {
		It("should record the reason and move to rejected", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))

			result, err := service.Reject(manager, a.ID, application.RejectDTO{Reason: "insufficient coverage"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusRejected))
			Expect(result.ManagerApproverID).To(Equal(int64Ptr(manager.ID)))
			Expect(result.RejectionReason).ToNot(BeNil())
			Expect(*result.RejectionReason).To(Equal("insufficient coverage"))
		})

		It("should fail validation on a blank reason and persist nothing", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))

			_, err := service.Reject(manager, a.ID, application.RejectDTO{Reason: "  "})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(mockRepo.applications[a.ID].Status).To(Equal(application.StatusPendingManager))
		})

		It("should return a blocked warning on an approved application", func() {
			a := newApplication(employee.ID, application.StatusApproved, int64Ptr(10))

			_, err := service.Reject(manager, a.ID, application.RejectDTO{Reason: "too late"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
			Expect(mockRepo.applications[a.ID].Status).To(Equal(application.StatusApproved))
		})
	})

	Describe("SendBack", func() {
		It("should return a pending_hr application to pending_manager and clear the manager approval", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))
			mockRepo.applications[a.ID].ManagerApproverID = int64Ptr(manager.ID)
			approvedAt := fixedTime.Add(-time.Hour)
			mockRepo.applications[a.ID].ManagerApprovedAt = &approvedAt

			result, err := service.SendBack(context.Background(), manager, a.ID, application.SendBackDTO{Reason: "dates unclear"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusPendingManager))
			Expect(result.ManagerApproverID).To(BeNil())
			Expect(result.ManagerApprovedAt).To(BeNil())
		})

		It("should let HR cancel their approval back to pending_hr", func() {
			a := newApplication(employee.ID, application.StatusApproved, int64Ptr(10))
			mockRepo.applications[a.ID].HrApproverID = int64Ptr(hr.ID)

			result, err := service.SendBack(context.Background(), hr, a.ID, application.SendBackDTO{Reason: "stamped in error", CancelApproval: true})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusPendingHr))
			Expect(result.HrApproverID).To(BeNil())
		})

		It("should let HR return a pending_hr application to the manager", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))

			result, err := service.SendBack(context.Background(), hr, a.ID, application.SendBackDTO{Reason: "needs manager detail"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(application.StatusPendingManager))
		})

		It("should emit a notification naming the returned-to stage", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))

			_, err := service.SendBack(context.Background(), hr, a.ID, application.SendBackDTO{Reason: "needs manager detail"})

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			sentBack, ok := publisher.published[0].(events.ApplicationSentBack)
			Expect(ok).To(BeTrue())
			Expect(sentBack.ReturnedTo).To(Equal(application.StatusPendingManager))
		})

		It("should be an illegal-state error on a rejected application", func() {
			a := newApplication(employee.ID, application.StatusRejected, int64Ptr(10))

			_, err := service.SendBack(context.Background(), hr, a.ID, application.SendBackDTO{Reason: "reconsider"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
			Expect(mockRepo.applications[a.ID].Status).To(Equal(application.StatusRejected))
		})

		It("should require a non-blank reason", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))

			_, err := service.SendBack(context.Background(), hr, a.ID, application.SendBackDTO{Reason: ""})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.applications[a.ID].Status).To(Equal(application.StatusPendingHr))
		})
	})

	Describe("Update", func() {
		It("should let the applicant edit while pending manager", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))
			newReason := "updated reason"

			result, err := service.Update(employee, a.ID, application.UpdateApplicationDTO{Reason: &newReason})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Reason).To(Equal(newReason))
		})

		It("should block edits once the application is approved", func() {
			a := newApplication(employee.ID, application.StatusApproved, int64Ptr(10))
			newReason := "updated reason"

			_, err := service.Update(employee, a.ID, application.UpdateApplicationDTO{Reason: &newReason})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
			Expect(mockRepo.applications[a.ID].Reason).To(Equal("family trip"))
		})

		It("should refuse edits to someone else's application", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))
			other := &auth.User{ID: 42, Role: auth.RoleEmployee}
			newReason := "hijacked"

			_, err := service.Update(other, a.ID, application.UpdateApplicationDTO{Reason: &newReason})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("Delete", func() {
		It("should let the applicant withdraw while pending manager", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))

			Expect(service.Delete(employee, a.ID)).To(Succeed())
			Expect(mockRepo.applications).ToNot(HaveKey(a.ID))
		})

		It("should block withdrawal once under review", func() {
			a := newApplication(employee.ID, application.StatusPendingHr, int64Ptr(10))

			err := service.Delete(employee, a.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBlocked))
			Expect(mockRepo.applications).To(HaveKey(a.ID))
		})
	})

	Describe("ListForManager", func() {
		It("should return an empty list for a manager with no managed units", func() {
			bareManager := &auth.User{ID: 7, Role: auth.RoleManager}

			apps, err := service.ListForManager(bareManager, application.Filter{})

			Expect(err).ToNot(HaveOccurred())
			Expect(apps).To(BeEmpty())
		})

		It("should exclude the manager's own applications", func() {
			newApplication(manager.ID, application.StatusPendingManager, int64Ptr(10))
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))

			apps, err := service.ListForManager(manager, application.Filter{})

			Expect(err).ToNot(HaveOccurred())
			Expect(apps).To(HaveLen(1))
			Expect(apps[0].ID).To(Equal(a.ID))
		})
	})

	Describe("repository failures", func() {
		It("should surface a transition error", func() {
			a := newApplication(employee.ID, application.StatusPendingManager, int64Ptr(10))
			mockRepo.transitionError = errors.New("connection reset")

			_, err := service.ApproveByManager(manager, a.ID)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("connection reset"))
		})
	})
})
