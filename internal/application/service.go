package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
)

type Repository interface {
	Create(a *Application) error
	GetByID(id int64) (*Application, error)
	ListByApplicant(applicantID int64, filter Filter) ([]*Application, error)
	ListForManager(departmentIDs, teamIDs []int64, excludeApplicantID int64, filter Filter) ([]*Application, error)
	ListForHr(filter Filter) ([]*Application, error)
	Update(a *Application) error
	Delete(id int64) error

	// TransitionStatus applies updates guarded by the expected current status.
	// It reports false when the row was not in fromStatus anymore, which the
	// service resolves to the illegal-state branch.
	TransitionStatus(id int64, fromStatus string, updates map[string]interface{}) (bool, error)

	// DepartmentManagerID resolves the manager of a department, nil when the
	// department has none.
	DepartmentManagerID(departmentID int64) (*int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the workflow service. A nil now falls back to time.Now;
// tests inject a fixed clock.
func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// Submit files a new application in pending_manager and notifies the
// applicant's department manager when one exists.
func (s *Service) Submit(ctx context.Context, actor *auth.User, dto CreateApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("application validation failed", "error", err, "applicant_id", actor.ID)
		return nil, err
	}

	a := &Application{
		ApplicantID:   actor.ID,
		Type:          dto.Type,
		StartDatetime: dto.StartDatetime,
		EndDatetime:   dto.EndDatetime,
		Reason:        dto.Reason,
		Status:        StatusPendingManager,
	}

	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create application", "error", err, "applicant_id", actor.ID)
		return nil, err
	}

	s.logger.Info("application submitted",
		"application_id", a.ID,
		"applicant_id", actor.ID,
		"type", a.Type)

	s.notifyManager(ctx, a, actor)

	return a, nil
}

// notifyManager is best effort: no department or no manager means no
// notification, and a publish failure never surfaces to the applicant.
func (s *Service) notifyManager(ctx context.Context, a *Application, actor *auth.User) {
	if actor.DepartmentID == nil {
		return
	}

	managerID, err := s.repo.DepartmentManagerID(*actor.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve department manager", "error", err, "department_id", *actor.DepartmentID)
		return
	}
	if managerID == nil {
		return
	}

	event := events.NewApplicationSubmitted(a.ID, a.ApplicantID, *managerID, TypeLabels[a.Type])
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish submitted event", "error", err, "application_id", a.ID)
	}
}

// Get enforces per-role visibility: the applicant always, a manager of the
// applicant's unit, and HR for any status.
func (s *Service) Get(actor *auth.User, id int64) (*Application, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if a.ApplicantID == actor.ID || actor.IsHr() {
		return a, nil
	}
	if auth.CanManageApplicant(actor, a.ApplicantID, a.ApplicantDepartmentID, a.ApplicantTeamID) {
		return a, nil
	}

	s.logger.Warn("application access denied", "application_id", id, "actor_id", actor.ID)
	return nil, internal.NewForbiddenError("not allowed to view this application", internal.ErrCodeUnauthorizedAccess)
}

func (s *Service) ListMine(actorID int64, filter Filter) ([]*Application, error) {
	return s.repo.ListByApplicant(actorID, filter)
}

// ListForManager returns applications from the manager's managed departments
// and teams, never the manager's own.
func (s *Service) ListForManager(actor *auth.User, filter Filter) ([]*Application, error) {
	if len(actor.ManagedDepartmentIDs) == 0 && len(actor.ManagedTeamIDs) == 0 {
		return []*Application{}, nil
	}
	return s.repo.ListForManager(actor.ManagedDepartmentIDs, actor.ManagedTeamIDs, actor.ID, filter)
}

func (s *Service) ListForHr(filter Filter) ([]*Application, error) {
	return s.repo.ListForHr(filter)
}

// ApproveByManager moves pending_manager to pending_hr. Acting on any other
// status is a blocked-action warning and leaves the row untouched.
func (s *Service) ApproveByManager(actor *auth.User, id int64) (*Application, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if !auth.CanManageApplicant(actor, a.ApplicantID, a.ApplicantDepartmentID, a.ApplicantTeamID) {
		return nil, internal.NewForbiddenError("not the approver for this applicant", internal.ErrCodeUnauthorizedAccess)
	}

	if !a.IsPendingManager() {
		return nil, internal.NewBlockedActionError("application is not awaiting manager approval", internal.ErrCodeIllegalTransition)
	}

	now := s.now()
	ok, err := s.repo.TransitionStatus(id, StatusPendingManager, map[string]interface{}{
		"status":              StatusPendingHr,
		"manager_approver_id": actor.ID,
		"manager_approved_at": now,
		"rejection_reason":    nil,
	})
	if err != nil {
		s.logger.Error("manager approval failed", "error", err, "application_id", id)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("application is not awaiting manager approval", internal.ErrCodeIllegalTransition)
	}

	s.logger.Info("application approved by manager", "application_id", id, "approver_id", actor.ID)
	return s.repo.GetByID(id)
}

// ApproveByHr moves pending_hr to approved and notifies the applicant.
func (s *Service) ApproveByHr(ctx context.Context, actor *auth.User, id int64) (*Application, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if !a.IsPendingHr() {
		return nil, internal.NewBlockedActionError("application is not awaiting HR approval", internal.ErrCodeIllegalTransition)
	}

	now := s.now()
	ok, err := s.repo.TransitionStatus(id, StatusPendingHr, map[string]interface{}{
		"status":           StatusApproved,
		"hr_approver_id":   actor.ID,
		"hr_approved_at":   now,
		"rejection_reason": nil,
	})
	if err != nil {
		s.logger.Error("hr approval failed", "error", err, "application_id", id)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("application is not awaiting HR approval", internal.ErrCodeIllegalTransition)
	}

	s.logger.Info("application approved by hr", "application_id", id, "approver_id", actor.ID)

	event := events.NewApplicationHrApproved(a.ID, a.ApplicantID, actor.ID, TypeLabels[a.Type])
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish approved event", "error", err, "application_id", id)
	}

	return s.repo.GetByID(id)
}

// Reject is manager-side only and legal only while pending_manager. The
// reason is mandatory; a blank reason fails validation before anything is
// persisted.
func (s *Service) Reject(actor *auth.User, id int64, dto RejectDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if !auth.CanManageApplicant(actor, a.ApplicantID, a.ApplicantDepartmentID, a.ApplicantTeamID) {
		return nil, internal.NewForbiddenError("not the approver for this applicant", internal.ErrCodeUnauthorizedAccess)
	}

	if !a.IsPendingManager() {
		return nil, internal.NewBlockedActionError("application is not awaiting manager approval", internal.ErrCodeIllegalTransition)
	}

	ok, err := s.repo.TransitionStatus(id, StatusPendingManager, map[string]interface{}{
		"status":              StatusRejected,
		"manager_approver_id": actor.ID,
		"rejection_reason":    dto.Reason,
	})
	if err != nil {
		s.logger.Error("rejection failed", "error", err, "application_id", id)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("application is not awaiting manager approval", internal.ErrCodeIllegalTransition)
	}

	s.logger.Info("application rejected", "application_id", id, "approver_id", actor.ID)
	return s.repo.GetByID(id)
}

// SendBack returns an application to an earlier stage. A manager returns it
// to pending_manager and loses their approval stamp; HR either cancels their
// own approval back to pending_hr or returns it all the way to the manager.
// Rejected applications cannot be sent back.
func (s *Service) SendBack(ctx context.Context, actor *auth.User, id int64, dto SendBackDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if !actor.IsHr() && !auth.CanManageApplicant(actor, a.ApplicantID, a.ApplicantDepartmentID, a.ApplicantTeamID) {
		return nil, internal.NewForbiddenError("not allowed to send back this application", internal.ErrCodeUnauthorizedAccess)
	}

	if !a.CanSendBack() {
		return nil, internal.NewBlockedActionError("application cannot be sent back from its current status", internal.ErrCodeIllegalTransition)
	}

	target := StatusPendingManager
	updates := map[string]interface{}{
		"rejection_reason": dto.Reason,
	}

	if actor.IsHr() {
		if dto.CancelApproval && a.IsApproved() {
			target = StatusPendingHr
		}
		updates["hr_approver_id"] = nil
		updates["hr_approved_at"] = nil
	} else {
		updates["manager_approver_id"] = nil
		updates["manager_approved_at"] = nil
	}
	updates["status"] = target

	ok, err := s.repo.TransitionStatus(id, a.Status, updates)
	if err != nil {
		s.logger.Error("send back failed", "error", err, "application_id", id)
		return nil, err
	}
	if !ok {
		return nil, internal.NewBlockedActionError("application cannot be sent back from its current status", internal.ErrCodeIllegalTransition)
	}

	s.logger.Info("application sent back",
		"application_id", id,
		"actor_id", actor.ID,
		"returned_to", target)

	event := events.NewApplicationSentBack(a.ID, a.ApplicantID, actor.ID, TypeLabels[a.Type], target)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish sent back event", "error", err, "application_id", id)
	}

	return s.repo.GetByID(id)
}

// Update lets the applicant amend their own application while it is still
// pending manager review. Anything later is frozen.
func (s *Service) Update(actor *auth.User, id int64, dto UpdateApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if a.ApplicantID != actor.ID {
		return nil, internal.NewForbiddenError("not your application", internal.ErrCodeUnauthorizedAccess)
	}
	if !a.Editable() {
		return nil, internal.NewBlockedActionError("application is already under review and cannot be edited", internal.ErrCodeApplicationFrozen)
	}

	if dto.Type != nil {
		a.Type = *dto.Type
	}
	if dto.StartDatetime != nil {
		a.StartDatetime = *dto.StartDatetime
	}
	if dto.EndDatetime != nil {
		a.EndDatetime = dto.EndDatetime
	}
	if dto.Reason != nil {
		a.Reason = *dto.Reason
	}

	if a.EndDatetime != nil && a.EndDatetime.Before(a.StartDatetime) {
		return nil, internal.NewValidationFieldError("end_datetime", "end must not be before start", internal.ErrCodeInvalidDate)
	}

	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to update application", "error", err, "application_id", id)
		return nil, err
	}

	return a, nil
}

func (s *Service) Delete(actor *auth.User, id int64) error {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewNotFoundError("application not found", internal.ErrCodeApplicationNotFound)
	}

	if a.ApplicantID != actor.ID {
		return internal.NewForbiddenError("not your application", internal.ErrCodeUnauthorizedAccess)
	}
	if !a.Editable() {
		return internal.NewBlockedActionError("application is already under review and cannot be withdrawn", internal.ErrCodeApplicationFrozen)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete application", "error", err, "application_id", id)
		return err
	}

	s.logger.Info("application withdrawn", "application_id", id, "applicant_id", actor.ID)
	return nil
}
