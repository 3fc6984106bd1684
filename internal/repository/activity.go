package repository

import (
	"context"

	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
	"gorm.io/gorm"
)

// ActivityFilter narrows an activity list. Zero values do not filter.
type ActivityFilter struct {
	LeadID    string
	Completed *bool
	Type      *model.ActivityType
}

func (f ActivityFilter) apply(tx *gorm.DB) *gorm.DB {
	if f.LeadID != "" {
		tx = tx.Where("lead_id = ?", f.LeadID)
	}
	if f.Completed != nil {
		tx = tx.Where("completed = ?", *f.Completed)
	}
	if f.Type != nil {
		tx = tx.Where("type = ?", *f.Type)
	}
	return tx
}

// ActivityRepository stores activities.
type ActivityRepository struct {
	db *gorm.DB
}

// List returns a filtered page of activities: open ones first, then by due
// date with undated ones last, then newest first.
func (r *ActivityRepository) List(ctx context.Context, filter ActivityFilter, page Page) ([]model.Activity, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Activity{})).Count(&total).Error; err != nil {
		return nil, 0, apperror.FromStorage(err, "Activity")
	}

	items := []model.Activity{}
	err := filter.apply(r.db.WithContext(ctx)).
		Preload("Lead.Company").
		Order("completed ASC").Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").Order("due_date ASC").Order("created_at DESC").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, apperror.FromStorage(err, "Activity")
	}
	return items, total, nil
}

// Get returns one activity with its lead and company.
func (r *ActivityRepository) Get(ctx context.Context, id string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).Preload("Lead.Company").Where("id = ?", id).First(&activity).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "Activity")
	}
	return &activity, nil
}

// Create inserts an activity after checking its lead exists.
func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &model.Lead{}, activity.LeadID, "Lead"); err != nil {
			return err
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		return tx.Preload("Lead.Company").Where("id = ?", activity.ID).First(activity).Error
	})
	return apperror.FromStorage(err, "Activity")
}

// Update applies a partial update and returns the stored record.
func (r *ActivityRepository) Update(ctx context.Context, id string, updates Updates) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&activity).Error; err != nil {
			return err
		}
		if leadID, ok := updates["lead_id"].(string); ok {
			if err := requireExists(tx, &model.Lead{}, leadID, "Lead"); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&activity).Updates(map[string]interface{}(updates)).Error; err != nil {
				return err
			}
		}
		activity = model.Activity{}
		return tx.Preload("Lead.Company").Where("id = ?", id).First(&activity).Error
	})
	if err != nil {
		return nil, apperror.FromStorage(err, "Activity")
	}
	return &activity, nil
}

// Delete removes an activity.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity model.Activity
		if err := tx.Where("id = ?", id).First(&activity).Error; err != nil {
			return err
		}
		return tx.Delete(&activity).Error
	})
	return apperror.FromStorage(err, "Activity")
}
