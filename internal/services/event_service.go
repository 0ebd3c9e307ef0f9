package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
)

// EventService manages wedding events and guest invitations to them.
type EventService struct {
	db *gorm.DB
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// EventInput captures the editable fields of an event.
type EventInput struct {
	Name         string
	StartsAt     time.Time
	EndsAt       time.Time
	Venue        string
	Address      string
	MealOptions  []models.MealOption
	DisplayOrder int
}

func (in EventInput) validate() (datatypes.JSON, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErrors.NewFieldValidation(map[string]string{"name": "event name is required"})
	}
	if !in.EndsAt.IsZero() && in.EndsAt.Before(in.StartsAt) {
		return nil, appErrors.NewFieldValidation(map[string]string{"ends_at": "event must end after it starts"})
	}

	// Meal option ids must be unique within the event; order is preserved as given.
	seen := make(map[string]struct{}, len(in.MealOptions))
	for _, option := range in.MealOptions {
		id := strings.TrimSpace(option.ID)
		if id == "" || strings.TrimSpace(option.Label) == "" {
			return nil, appErrors.NewFieldValidation(map[string]string{"meal_options": "meal options need an id and a label"})
		}
		if _, dup := seen[id]; dup {
			return nil, appErrors.NewFieldValidation(map[string]string{"meal_options": "duplicate meal option id: " + id})
		}
		seen[id] = struct{}{}
	}

	if len(in.MealOptions) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(in.MealOptions)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return datatypes.JSON(encoded), nil
}

// Create adds an event to the wedding.
func (s *EventService) Create(ctx context.Context, weddingID string, input EventInput) (*models.Event, error) {
	mealOptions, err := input.validate()
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		WeddingID:    weddingID,
		Name:         strings.TrimSpace(input.Name),
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		Venue:        normalizeOptional(input.Venue),
		Address:      normalizeOptional(input.Address),
		MealOptions:  mealOptions,
		DisplayOrder: input.DisplayOrder,
	}

	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return event, nil
}

// Update edits an event. Meal options are replaced wholesale; existing RSVP
// meal choices that no longer resolve keep their stored id and simply stop
// counting in aggregation.
func (s *EventService) Update(ctx context.Context, weddingID, eventID string, input EventInput) (*models.Event, error) {
	mealOptions, err := input.validate()
	if err != nil {
		return nil, err
	}

	event, err := s.Get(ctx, weddingID, eventID)
	if err != nil {
		return nil, err
	}

	event.Name = strings.TrimSpace(input.Name)
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.Venue = normalizeOptional(input.Venue)
	event.Address = normalizeOptional(input.Address)
	event.MealOptions = mealOptions
	event.DisplayOrder = input.DisplayOrder

	if err := s.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return event, nil
}

// Get fetches one event, scoped to the wedding.
func (s *EventService) Get(ctx context.Context, weddingID, eventID string) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&event, "id = ?", eventID).Error
	if err != nil {
		return nil, translateDBError(err, "event not found")
	}
	return &event, nil
}

// List returns the wedding's events in display order.
func (s *EventService) List(ctx context.Context, weddingID string) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Order("display_order ASC, starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return events, nil
}

// Delete removes an event and its invitation rows.
func (s *EventService) Delete(ctx context.Context, weddingID, eventID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(weddingScope(weddingID)).Delete(&models.Event{}, "id = ?", eventID)
		if result.Error != nil {
			return appErrors.ErrInternalServer.WithInternal(result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.ErrNotFound.WithMessage("event not found")
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventGuest{}).Error; err != nil {
			return appErrors.ErrInternalServer.WithInternal(err)
		}
		return nil
	})
}

// Invite adds a guest to an event's guest list. Inviting an already invited
// guest is a no-op returning the existing row.
func (s *EventService) Invite(ctx context.Context, weddingID, eventID, guestID string) (*models.EventGuest, error) {
	if _, err := s.Get(ctx, weddingID, eventID); err != nil {
		return nil, err
	}

	var guest models.Guest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&guest, "id = ?", guestID).Error
	if err != nil {
		return nil, translateDBError(err, "guest not found")
	}

	invitation := &models.EventGuest{
		WeddingID: weddingID,
		EventID:   eventID,
		GuestID:   guestID,
	}
	err = s.db.WithContext(ctx).Create(invitation).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			var existing models.EventGuest
			findErr := s.db.WithContext(ctx).
				First(&existing, "event_id = ? AND guest_id = ?", eventID, guestID).Error
			if findErr != nil {
				return nil, appErrors.ErrInternalServer.WithInternal(findErr)
			}
			return &existing, nil
		}
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return invitation, nil
}

// Uninvite removes a guest from an event's guest list, discarding any RSVP.
func (s *EventService) Uninvite(ctx context.Context, weddingID, eventID, guestID string) error {
	result := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Where("event_id = ? AND guest_id = ?", eventID, guestID).
		Delete(&models.EventGuest{})
	if result.Error != nil {
		return appErrors.ErrInternalServer.WithInternal(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrNotFound.WithMessage("invitation not found")
	}
	return nil
}
