// Package store persists activities. Every query is filtered by the owning user.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carbon-tracker/internal/emission"
	"carbon-tracker/internal/models"
	"carbon-tracker/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrActivityNotFound is returned when no activity matches both the id and the owner.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityInput carries the user-editable fields of an activity.
// A zero Date means "now" on create and "keep the stored date" on update.
type ActivityInput struct {
	Type        string
	Category    string
	Amount      float64
	Unit        string
	Description string
	Date        time.Time
}

// ActivityStore is the gorm-backed activity repository.
type ActivityStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewActivityStore builds an ActivityStore.
func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db, now: time.Now}
}

// Create computes the footprint, assigns an id and stores the activity.
func (s *ActivityStore) Create(ctx context.Context, ownerID uint, in ActivityInput) (*models.Activity, error) {
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	activity := models.Activity{
		ID:              uuid.NewString(),
		UserID:          ownerID,
		Type:            in.Type,
		Category:        in.Category,
		Amount:          in.Amount,
		Unit:            in.Unit,
		CarbonFootprint: emission.ComputeFootprint(in.Type, in.Category, in.Amount),
		Date:            date.UTC(),
		Description:     in.Description,
	}

	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	observability.RecordActivityWrite("create", activity.Type, activity.CarbonFootprint,
		emission.IsValidCategory(activity.Type, activity.Category))
	return &activity, nil
}

// List returns all activities of the owner, most recent first.
func (s *ActivityStore) List(ctx context.Context, ownerID uint) ([]models.Activity, error) {
	return s.ListRecent(ctx, ownerID, 0)
}

// ListRecent returns at most limit activities of the owner, most recent first.
// limit <= 0 means no limit.
func (s *ActivityStore) ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Activity, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("date DESC, created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var activities []models.Activity
	if err := q.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Get returns one activity of the owner.
func (s *ActivityStore) Get(ctx context.Context, ownerID uint, id string) (*models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &activity, nil
}

// Update replaces the editable fields and recomputes the footprint.
func (s *ActivityStore) Update(ctx context.Context, ownerID uint, id string, in ActivityInput) (*models.Activity, error) {
	activity, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	activity.Type = in.Type
	activity.Category = in.Category
	activity.Amount = in.Amount
	activity.Unit = in.Unit
	activity.Description = in.Description
	activity.CarbonFootprint = emission.ComputeFootprint(in.Type, in.Category, in.Amount)
	if !in.Date.IsZero() {
		activity.Date = in.Date.UTC()
	}

	res := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Select("type", "category", "amount", "unit", "description", "carbon_footprint", "date", "updated_at").
		Updates(map[string]interface{}{
			"type":             activity.Type,
			"category":         activity.Category,
			"amount":           activity.Amount,
			"unit":             activity.Unit,
			"description":      activity.Description,
			"carbon_footprint": activity.CarbonFootprint,
			"date":             activity.Date,
			"updated_at":       s.now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update activity: %w", res.Error)
	}
	// deleted between the read and the write
	if res.RowsAffected == 0 {
		return nil, ErrActivityNotFound
	}

	observability.RecordActivityWrite("update", activity.Type, activity.CarbonFootprint,
		emission.IsValidCategory(activity.Type, activity.Category))
	return s.Get(ctx, ownerID, id)
}

// Delete removes one activity of the owner.
func (s *ActivityStore) Delete(ctx context.Context, ownerID uint, id string) error {
	activity, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Activity{})
	if res.Error != nil {
		return fmt.Errorf("delete activity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrActivityNotFound
	}

	observability.RecordActivityWrite("delete", activity.Type, 0, true)
	return nil
}
