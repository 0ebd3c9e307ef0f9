package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/logger"
	"github.com/everafterhq/everafter/pkg/mail"
	"github.com/everafterhq/everafter/pkg/metrics"

	"go.uber.org/zap"
)

// maxScheduleAhead bounds how far in the future a broadcast may be scheduled.
const maxScheduleAhead = 30 * 24 * time.Hour

// BroadcastService owns the broadcast message lifecycle:
// PENDING -> SENT | CANCELLED | FAILED, with PENDING the only cancellable
// state and no retries out of FAILED.
type BroadcastService struct {
	db     *gorm.DB
	mailer mail.Mailer
	now    func() time.Time
	log    *zap.Logger
}

// BroadcastOption customises a BroadcastService.
type BroadcastOption func(*BroadcastService)

// WithBroadcastClock injects a deterministic clock for tests.
func WithBroadcastClock(now func() time.Time) BroadcastOption {
	return func(s *BroadcastService) {
		s.now = now
	}
}

// NewBroadcastService constructs a BroadcastService.
func NewBroadcastService(db *gorm.DB, mailer mail.Mailer, opts ...BroadcastOption) *BroadcastService {
	s := &BroadcastService{
		db:     db,
		mailer: mailer,
		now:    time.Now,
		log:    logger.WithModule("broadcast"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BroadcastInput captures a new broadcast. A nil ScheduledFor means send now.
type BroadcastInput struct {
	Subject      string
	Body         string
	CTALink      string
	ScheduledFor *time.Time
}

// Create stores a broadcast. Send-now messages are delivered synchronously
// and come back SENT or FAILED; scheduled messages must fall within
// [now, now+30d] and come back PENDING.
func (s *BroadcastService) Create(ctx context.Context, weddingID string, input BroadcastInput) (*models.BroadcastMessage, error) {
	fields := map[string]string{}
	if strings.TrimSpace(input.Subject) == "" {
		fields["subject"] = "subject is required"
	}
	if strings.TrimSpace(input.Body) == "" {
		fields["body"] = "body is required"
	}

	now := s.now()
	if input.ScheduledFor != nil {
		t := *input.ScheduledFor
		if t.Before(now) {
			fields["scheduled_for"] = "scheduled time must not be in the past"
		} else if t.After(now.Add(maxScheduleAhead)) {
			fields["scheduled_for"] = "scheduled time must be within 30 days"
		}
	}
	if len(fields) > 0 {
		return nil, appErrors.NewFieldValidation(fields)
	}

	message := &models.BroadcastMessage{
		WeddingID:    weddingID,
		Subject:      strings.TrimSpace(input.Subject),
		Body:         input.Body,
		CTALink:      normalizeOptional(input.CTALink),
		Status:       models.BroadcastPending,
		ScheduledFor: input.ScheduledFor,
	}

	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	if input.ScheduledFor == nil {
		s.deliver(ctx, message)
	}

	return message, nil
}

// Cancel moves a PENDING broadcast to CANCELLED. Any other state is Conflict;
// the conditional update makes cancel-vs-send race-safe.
func (s *BroadcastService) Cancel(ctx context.Context, weddingID, messageID string) (*models.BroadcastMessage, error) {
	result := s.db.WithContext(ctx).Model(&models.BroadcastMessage{}).
		Where("id = ? AND wedding_id = ? AND status = ?", messageID, weddingID, models.BroadcastPending).
		Update("status", models.BroadcastCancelled)
	if result.Error != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(result.Error)
	}

	message, err := s.Get(ctx, weddingID, messageID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, appErrors.NewConflict("only pending broadcasts can be cancelled")
	}
	return message, nil
}

// Get fetches one broadcast, scoped to the wedding.
func (s *BroadcastService) Get(ctx context.Context, weddingID, messageID string) (*models.BroadcastMessage, error) {
	var message models.BroadcastMessage
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&message, "id = ?", messageID).Error
	if err != nil {
		return nil, translateDBError(err, "broadcast not found")
	}
	return &message, nil
}

// List returns the wedding's broadcasts, newest first.
func (s *BroadcastService) List(ctx context.Context, weddingID string) ([]models.BroadcastMessage, error) {
	var messages []models.BroadcastMessage
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return messages, nil
}

// DispatchDue delivers every PENDING broadcast whose scheduled time has
// passed. Called by the cron dispatcher; a mailer failure marks the message
// FAILED and moves on, it never aborts the sweep.
func (s *BroadcastService) DispatchDue(ctx context.Context) (int, error) {
	now := s.now()

	var due []models.BroadcastMessage
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", models.BroadcastPending, now).
		Order("scheduled_for ASC").
		Find(&due).Error
	if err != nil {
		return 0, appErrors.ErrInternalServer.WithInternal(err)
	}

	dispatched := 0
	for i := range due {
		message := &due[i]

		// Claim the row first so a concurrent cancel or a second dispatcher
		// instance cannot double-send.
		claim := s.db.WithContext(ctx).Model(&models.BroadcastMessage{}).
			Where("id = ? AND status = ?", message.ID, models.BroadcastPending).
			Update("status", models.BroadcastSent)
		if claim.Error != nil {
			return dispatched, appErrors.ErrInternalServer.WithInternal(claim.Error)
		}
		if claim.RowsAffected == 0 {
			continue
		}

		s.deliver(ctx, message)
		dispatched++
	}

	return dispatched, nil
}

// deliver sends the message to every guest of the wedding with an email
// address and persists the terminal state. Delivery failure is recorded as
// FAILED, never propagated as a crash.
func (s *BroadcastService) deliver(ctx context.Context, message *models.BroadcastMessage) {
	now := s.now()

	var guests []models.Guest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(message.WeddingID)).
		Where("email <> ''").
		Find(&guests).Error
	if err != nil {
		s.markFailed(ctx, message, "loading recipients failed: "+err.Error())
		return
	}

	recipients := make([]string, 0, len(guests))
	for _, guest := range guests {
		recipients = append(recipients, guest.Email)
	}

	if len(recipients) == 0 {
		s.markFailed(ctx, message, "no guests with an email address")
		return
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:      recipients,
		Subject: message.Subject,
		Body:    message.Body,
		CTA:     message.CTALink,
	})
	if err != nil {
		s.log.Warn("broadcast delivery failed",
			zap.String("broadcast_id", message.ID),
			zap.String("wedding_id", message.WeddingID),
			zap.Error(err))
		s.markFailed(ctx, message, err.Error())
		return
	}

	message.Status = models.BroadcastSent
	message.SentAt = &now
	message.RecipientCount = len(recipients)
	message.FailureReason = ""

	updateErr := s.db.WithContext(ctx).Model(message).
		Updates(map[string]interface{}{
			"status":          models.BroadcastSent,
			"sent_at":         now,
			"recipient_count": len(recipients),
			"failure_reason":  "",
		}).Error
	if updateErr != nil {
		s.log.Error("persisting broadcast result failed",
			zap.String("broadcast_id", message.ID),
			zap.Error(updateErr))
		return
	}

	metrics.BroadcastsSent.WithLabelValues("sent").Inc()
}

func (s *BroadcastService) markFailed(ctx context.Context, message *models.BroadcastMessage, reason string) {
	message.Status = models.BroadcastFailed
	message.FailureReason = reason

	err := s.db.WithContext(ctx).Model(message).
		Updates(map[string]interface{}{
			"status":         models.BroadcastFailed,
			"failure_reason": reason,
		}).Error
	if err != nil {
		s.log.Error("persisting broadcast failure failed",
			zap.String("broadcast_id", message.ID),
			zap.Error(err))
	}

	metrics.BroadcastsSent.WithLabelValues("failed").Inc()
}
