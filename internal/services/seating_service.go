package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/everafterhq/everafter/internal/models"
	appErrors "github.com/everafterhq/everafter/pkg/errors"
	"github.com/everafterhq/everafter/pkg/metrics"
)

// SeatingService manages reception tables and guest seat assignments. The
// capacity invariant (occupancy + guest weight <= capacity) is validated
// inside the same transaction as the assignment write, so two concurrent
// assignments cannot overbook a table.
type SeatingService struct {
	db *gorm.DB
}

// NewSeatingService constructs a SeatingService.
func NewSeatingService(db *gorm.DB) *SeatingService {
	return &SeatingService{db: db}
}

// TableInput captures the editable fields of a seating table.
type TableInput struct {
	Name     string
	Capacity int
}

func (in TableInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "table name is required"
	}
	if in.Capacity < 1 {
		fields["capacity"] = "capacity must be at least 1"
	}
	if len(fields) > 0 {
		return appErrors.NewFieldValidation(fields)
	}
	return nil
}

// CreateTable adds a table to the wedding.
func (s *SeatingService) CreateTable(ctx context.Context, weddingID string, input TableInput) (*models.SeatingTable, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	table := &models.SeatingTable{
		WeddingID: weddingID,
		Name:      strings.TrimSpace(input.Name),
		Capacity:  input.Capacity,
	}
	if err := s.db.WithContext(ctx).Create(table).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return table, nil
}

// UpdateTable edits a table. Shrinking capacity below current occupancy is
// rejected so the invariant cannot be broken retroactively.
func (s *SeatingService) UpdateTable(ctx context.Context, weddingID, tableID string, input TableInput) (*models.SeatingTable, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var updated *models.SeatingTable
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.SeatingTable
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(weddingScope(weddingID)).
			First(&table, "id = ?", tableID).Error
		if err != nil {
			return translateDBError(err, "table not found")
		}

		occupancy, err := tableOccupancy(tx, weddingID, tableID)
		if err != nil {
			return err
		}
		if input.Capacity < occupancy {
			return appErrors.NewConflict("capacity is below the table's current occupancy")
		}

		table.Name = strings.TrimSpace(input.Name)
		table.Capacity = input.Capacity
		if err := tx.Save(&table).Error; err != nil {
			return appErrors.ErrInternalServer.WithInternal(err)
		}
		updated = &table
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTable removes a table and unassigns its guests.
func (s *SeatingService) DeleteTable(ctx context.Context, weddingID, tableID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Guest{}).
			Where("table_id = ?", tableID).
			Update("table_id", nil).Error
		if err != nil {
			return appErrors.ErrInternalServer.WithInternal(err)
		}

		result := tx.Scopes(weddingScope(weddingID)).Delete(&models.SeatingTable{}, "id = ?", tableID)
		if result.Error != nil {
			return appErrors.ErrInternalServer.WithInternal(result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.ErrNotFound.WithMessage("table not found")
		}
		return nil
	})
}

// CanAssign is the pure capacity check used for optimistic client updates:
// reject when occupancy + guest weight would exceed capacity.
func CanAssign(capacity, occupancy, guestWeight int) bool {
	return occupancy+guestWeight <= capacity
}

// GuestWeight is the number of seats a guest consumes: themselves plus their
// highest attending plus-one count across the wedding's events.
func GuestWeight(guest *models.Guest, invitations []models.EventGuest) int {
	weight := 1
	for _, invitation := range invitations {
		if invitation.GuestID != guest.ID || !invitation.IsAttending() {
			continue
		}
		if 1+invitation.PlusOneCount > weight {
			weight = 1 + invitation.PlusOneCount
		}
	}
	return weight
}

// Assign seats a guest at a table. The capacity check runs inside the same
// transaction as the write, with the table row locked, so concurrent assigns
// serialize and the loser sees the updated occupancy. Moving between tables
// is the same operation; the old assignment is released implicitly.
func (s *SeatingService) Assign(ctx context.Context, weddingID, guestID, tableID string) (*models.Guest, error) {
	var assigned *models.Guest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.SeatingTable
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(weddingScope(weddingID)).
			First(&table, "id = ?", tableID).Error
		if err != nil {
			return translateDBError(err, "table not found")
		}

		var guest models.Guest
		err = tx.Scopes(weddingScope(weddingID)).First(&guest, "id = ?", guestID).Error
		if err != nil {
			return translateDBError(err, "guest not found")
		}

		if guest.TableID != nil && *guest.TableID == tableID {
			assigned = &guest
			return nil
		}

		occupancy, err := tableOccupancy(tx, weddingID, tableID)
		if err != nil {
			return err
		}

		var invitations []models.EventGuest
		if err := tx.Where("guest_id = ?", guestID).Find(&invitations).Error; err != nil {
			return appErrors.ErrInternalServer.WithInternal(err)
		}
		weight := GuestWeight(&guest, invitations)

		if !CanAssign(table.Capacity, occupancy, weight) {
			metrics.SeatingRejections.Inc()
			return appErrors.NewConflict("table does not have enough free seats")
		}

		guest.TableID = &table.ID
		if err := tx.Model(&guest).Update("table_id", table.ID).Error; err != nil {
			return appErrors.ErrInternalServer.WithInternal(err)
		}
		assigned = &guest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

// Unassign removes a guest's seat assignment. Always legal.
func (s *SeatingService) Unassign(ctx context.Context, weddingID, guestID string) (*models.Guest, error) {
	var guest models.Guest
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		First(&guest, "id = ?", guestID).Error
	if err != nil {
		return nil, translateDBError(err, "guest not found")
	}

	if guest.TableID == nil {
		return &guest, nil
	}

	if err := s.db.WithContext(ctx).Model(&guest).Update("table_id", nil).Error; err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	guest.TableID = nil
	return &guest, nil
}

// TableChart is one table with its seated guests and derived occupancy.
type TableChart struct {
	Table     models.SeatingTable `json:"table"`
	Guests    []models.Guest      `json:"guests"`
	Occupancy int                 `json:"occupancy"`
	FreeSeats int                 `json:"free_seats"`
}

// SeatingChart is the full seating view: every table plus the unassigned pool.
type SeatingChart struct {
	Tables     []TableChart   `json:"tables"`
	Unassigned []models.Guest `json:"unassigned"`
}

// Chart builds the seating chart for the wedding.
func (s *SeatingService) Chart(ctx context.Context, weddingID string) (*SeatingChart, error) {
	var tables []models.SeatingTable
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Order("name ASC").
		Find(&tables).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	var guests []models.Guest
	err = s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Preload("Invitations").
		Order(byDisplayName).
		Find(&guests).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}

	chart := &SeatingChart{Tables: make([]TableChart, 0, len(tables))}
	byTable := make(map[string][]models.Guest)
	for _, guest := range guests {
		if guest.TableID == nil {
			chart.Unassigned = append(chart.Unassigned, guest)
			continue
		}
		byTable[*guest.TableID] = append(byTable[*guest.TableID], guest)
	}

	for _, table := range tables {
		seated := byTable[table.ID]
		occupancy := 0
		for i := range seated {
			occupancy += GuestWeight(&seated[i], seated[i].Invitations)
		}
		chart.Tables = append(chart.Tables, TableChart{
			Table:     table,
			Guests:    seated,
			Occupancy: occupancy,
			FreeSeats: table.Capacity - occupancy,
		})
	}

	return chart, nil
}

// tableOccupancy sums the weights of all guests currently at the table.
func tableOccupancy(tx *gorm.DB, weddingID, tableID string) (int, error) {
	var seated []models.Guest
	err := tx.Scopes(weddingScope(weddingID)).
		Where("table_id = ?", tableID).
		Find(&seated).Error
	if err != nil {
		return 0, appErrors.ErrInternalServer.WithInternal(err)
	}
	if len(seated) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(seated))
	for _, guest := range seated {
		ids = append(ids, guest.ID)
	}

	var invitations []models.EventGuest
	err = tx.Where("guest_id IN ?", ids).Find(&invitations).Error
	if err != nil {
		return 0, appErrors.ErrInternalServer.WithInternal(err)
	}

	occupancy := 0
	for i := range seated {
		occupancy += GuestWeight(&seated[i], invitations)
	}
	return occupancy, nil
}

// ListTables returns the wedding's tables ordered by name.
func (s *SeatingService) ListTables(ctx context.Context, weddingID string) ([]models.SeatingTable, error) {
	var tables []models.SeatingTable
	err := s.db.WithContext(ctx).
		Scopes(weddingScope(weddingID)).
		Order("name ASC").
		Find(&tables).Error
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithInternal(err)
	}
	return tables, nil
}
