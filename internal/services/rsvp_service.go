package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/metrics"
)

// RSVPService handles guest-facing RSVP lookup and submission plus the
// aggregation views the couple dashboard renders.
type RSVPService struct {
	db  *gorm.DB
	now func() time.Time
}

// RSVPOption customises an RSVPService.
type RSVPOption func(*RSVPService)

// WithRSVPClock injects a deterministic clock for tests.
func WithRSVPClock(now func() time.Time) RSVPOption {
	return func(s *RSVPService) {
		s.now = now
	}
}

// NewRSVPService constructs an RSVPService.
func NewRSVPService(db *gorm.DB, opts ...RSVPOption) *RSVPService {
	s := &RSVPService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves a wedding by its shared RSVP code and returns the guest
// list with invitations and events, so a guest can find their name.
func (s *RSVPService) Lookup(ctx context.Context, code string) (*models.Wedding, []models.Guest, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil, appErrors.NewFieldValidation(map[string]string{"code": "RSVP code is required"})
	}

	var wedding models.Wedding
	err := s.db.WithContext(ctx).First(&wedding, "rsvp_code = ?", code).Error
	if err != nil {
		return nil, nil, translateDBError(err, "no wedding matches this RSVP code")
	}
	if wedding.Suspended {
		return nil, nil, appErrors.ErrForbidden.WithMessage("this wedding site is unavailable")
	}

	var guests []models.Guest
	err = s.db.WithContext(ctx).
		Scopes(weddingScope(wedding.ID)).
		Preload("Invitations").
		Preload("Invitations.Event").
		Order(byDisplayName).
		Find(&guests).Error
	if err != nil {
		return nil, nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	return &wedding, guests, nil
}

// SubmitInput is one guest response for one event.
type SubmitInput struct {
	EventID      string
	GuestID      string
	Status       models.RSVPStatus
	PlusOneCount int
	PlusOneName  string
	MealChoice   string
	DietaryNotes string
}

// Submit records (or overwrites) a guest's RSVP for an event. The invitation
// row must already exist; that is the authorization check. Resubmission is
// last-write-wins with no history.
func (s *RSVPService) Submit(ctx context.Context, weddingID string, input SubmitInput) (*models.EventGuest, error) {
	if input.Status != models.RSVPAttending && input.Status != models.RSVPDeclined {
		return nil, appErrors.NewFieldValidation(map[string]string{"status": "status must be ATTENDING or DECLINED"})
	}

	invitation, err := s.invitation(ctx, weddingID, input.EventID, input.GuestID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}

	if input.PlusOneCount < 0 || input.PlusOneCount > models.MaxPlusOneCount {
		fields["plus_one_count"] = "plus-one count must be between 0 and 10"
	}
	if len(input.DietaryNotes) > models.MaxDietaryNotesLen {
		fields["dietary_notes"] = "dietary notes must be 500 characters or fewer"
	}

	plusOneCount := input.PlusOneCount
	plusOneName := normalizeOptional(input.PlusOneName)
	mealChoice := normalizeOptional(input.MealChoice)
	dietaryNotes := normalizeOptional(input.DietaryNotes)

	// Declining clears attendance details rather than failing on them.
	if input.Status == models.RSVPDeclined {
		plusOneCount = 0
		plusOneName = ""
		mealChoice = ""
	}

	if plusOneCount > 0 {
		var guest models.Guest
		if err := s.db.WithContext(ctx).First(&guest, "id = ?", input.GuestID).Error; err != nil {
			return nil, translateDBError(err, "guest not found")
		}
		if !guest.AllowPlusOne {
			fields["plus_one_count"] = "this invitation does not include a plus-one"
		}
	}

	if mealChoice != "" {
		var event models.Event
		if err := s.db.WithContext(ctx).First(&event, "id = ?", input.EventID).Error; err != nil {
			return nil, translateDBError(err, "event not found")
		}
		if !event.HasMealOption(mealChoice) {
			fields["meal_choice"] = "meal choice is not offered for this event"
		}
	}

	if len(fields) > 0 {
		return nil, appErrors.NewFieldValidation(fields)
	}

	status := input.Status
	now := s.now()

	invitation.RSVPStatus = &status
	invitation.RSVPAt = &now
	invitation.PlusOneCount = plusOneCount
	invitation.PlusOneName = plusOneName
	invitation.MealChoice = mealChoice
	invitation.DietaryNotes = dietaryNotes

	if err := s.db.WithContext(ctx).Save(invitation).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	metrics.RSVPSubmissions.WithLabelValues(string(status)).Inc()
	return invitation, nil
}

// Override lets the couple set any status on an invitation from the
// dashboard, including MAYBE and clearing the response back to pending.
func (s *RSVPService) Override(ctx context.Context, weddingID, eventID, guestID string, status *models.RSVPStatus) (*models.EventGuest, error) {
	if status != nil {
		switch *status {
		case models.RSVPAttending, models.RSVPDeclined, models.RSVPMaybe:
		default:
			return nil, appErrors.NewFieldValidation(map[string]string{"status": "unknown RSVP status"})
		}
	}

	invitation, err := s.invitation(ctx, weddingID, eventID, guestID)
	if err != nil {
		return nil, err
	}

	invitation.RSVPStatus = status
	if status == nil {
		invitation.RSVPAt = nil
		invitation.PlusOneCount = 0
		invitation.PlusOneName = ""
		invitation.MealChoice = ""
		invitation.DietaryNotes = ""
	} else {
		now := s.now()
		invitation.RSVPAt = &now
	}

	// Save skips zero-valued fields through struct updates; use a column map
	// so clearing back to pending actually persists.
	err = s.db.WithContext(ctx).Model(invitation).
		Select("rsvp_status", "rsvp_at", "plus_one_count", "plus_one_name", "meal_choice", "dietary_notes").
		Updates(map[string]interface{}{
			"rsvp_status":    invitation.RSVPStatus,
			"rsvp_at":        invitation.RSVPAt,
			"plus_one_count": invitation.PlusOneCount,
			"plus_one_name":  invitation.PlusOneName,
			"meal_choice":    invitation.MealChoice,
			"dietary_notes":  invitation.DietaryNotes,
		}).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return invitation, nil
}

// RSVPSummary is the aggregation over invitation rows. MAYBE is reported as
// its own bucket and counts toward neither attending nor declined.
type RSVPSummary struct {
	Invited    int            `json:"invited"`
	Attending  int            `json:"attending"`
	Declined   int            `json:"declined"`
	Maybe      int            `json:"maybe"`
	Pending    int            `json:"pending"`
	Headcount  int            `json:"headcount"`
	MealCounts map[string]int `json:"meal_counts"`
}

// AggregateEvent folds all invitation rows of one event into a summary.
func (s *RSVPService) AggregateEvent(ctx context.Context, weddingID, eventID string) (*RSVPSummary, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&event, "id = ?", eventID).Error
	if err != nil {
		return nil, translateDBError(err, "event not found")
	}

	var rows []models.EventGuest
	err = s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Find(&rows).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	summary := foldRSVPs(rows, event.HasMealOption)
	return &summary, nil
}

// AggregateWedding folds every invitation row of the wedding, across all
// events. Meal counts only include choices still configured on their event.
func (s *RSVPService) AggregateWedding(ctx context.Context, weddingID string) (*RSVPSummary, error) {
	var rows []models.EventGuest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Preload("Event").
		Find(&rows).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	summary := foldRSVPs(rows, func(string) bool { return true })

	// Re-filter meal counts against each owning event's configuration.
	counts := make(map[string]int)
	for _, row := range rows {
		if !row.IsAttending() || row.MealChoice == "" || row.Event == nil {
			continue
		}
		if row.Event.HasMealOption(row.MealChoice) {
			counts[row.MealChoice]++
		}
	}
	summary.MealCounts = counts

	return &summary, nil
}

// foldRSVPs is the pure aggregation: order-independent, recomputed on every
// read, no caching.
func foldRSVPs(rows []models.EventGuest, validMeal func(string) bool) RSVPSummary {
	summary := RSVPSummary{MealCounts: make(map[string]int)}

	for _, row := range rows {
		summary.Invited++

		if row.RSVPStatus == nil {
			summary.Pending++
			continue
		}

		switch *row.RSVPStatus {
		case models.RSVPAttending:
			summary.Attending++
			summary.Headcount += row.Headcount()
			if row.MealChoice != "" && validMeal(row.MealChoice) {
				summary.MealCounts[row.MealChoice]++
			}
		case models.RSVPDeclined:
			summary.Declined++
		case models.RSVPMaybe:
			summary.Maybe++
		default:
			summary.Pending++
		}
	}

	return summary
}

func (s *RSVPService) invitation(ctx context.Context, weddingID, eventID, guestID string) (*models.EventGuest, error) {
	var invitation models.EventGuest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Where("event_id = ? AND guest_id = ?", eventID, guestID).
		First(&invitation).Error
	if err != nil {
		return nil, translateDBError(err, "no invitation found for this guest and event")
	}
	return &invitation, nil
}
