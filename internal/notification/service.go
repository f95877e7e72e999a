package notification

import (
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal"
)

type Repository interface {
	Create(n *Notification) error
	GetByID(id int64) (*Notification, error)
	ListByRecipient(recipientID int64, limit, offset int) ([]*Notification, error)
	CountUnread(recipientID int64) (int64, error)
	MarkRead(id int64) error
	Delete(id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Emit appends a notification. It is best effort by contract: callers sit
// behind the event bus and a failure here is logged, never propagated to the
// transition that produced the event.
func (s *Service) Emit(senderID *int64, recipientID int64, message, link string) error {
	n := &Notification{
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
		Link:        link,
	}

	if err := s.repo.Create(n); err != nil {
		s.logger.Error("failed to create notification", "error", err, "recipient_id", recipientID)
		return err
	}

	s.logger.Info("notification created", "notification_id", n.ID, "recipient_id", recipientID)
	return nil
}

func (s *Service) List(recipientID int64, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByRecipient(recipientID, limit, offset)
}

// UnreadCount backs the polling endpoint.
func (s *Service) UnreadCount(recipientID int64) (int64, error) {
	return s.repo.CountUnread(recipientID)
}

// MarkRead is recipient-only: nobody can touch another user's inbox.
func (s *Service) MarkRead(recipientID, id int64) (*Notification, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
	}

	if n.RecipientID != recipientID {
		return nil, internal.NewForbiddenError("not your notification", internal.ErrCodeUnauthorizedAccess)
	}

	if err := s.repo.MarkRead(id); err != nil {
		s.logger.Error("failed to mark notification read", "error", err, "notification_id", id)
		return nil, err
	}

	n.IsRead = true
	return n, nil
}

func (s *Service) Delete(recipientID, id int64) error {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
	}

	if n.RecipientID != recipientID {
		return internal.NewForbiddenError("not your notification", internal.ErrCodeUnauthorizedAccess)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete notification", "error", err, "notification_id", id)
		return err
	}

	return nil
}
