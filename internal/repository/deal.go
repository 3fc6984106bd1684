package repository

import (
	"context"

	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/pipeline"
	"gorm.io/gorm"
)

// DealFilter narrows a deal list. Zero values do not filter.
type DealFilter struct {
	Stage  *model.Stage
	LeadID string
}

func (f DealFilter) apply(tx *gorm.DB) *gorm.DB {
	if f.Stage != nil {
		tx = tx.Where("stage = ?", *f.Stage)
	}
	if f.LeadID != "" {
		tx = tx.Where("lead_id = ?", f.LeadID)
	}
	return tx
}

// DealRepository stores deals.
type DealRepository struct {
	db *gorm.DB
}

// List returns a filtered page of deals, newest first, with lead and company.
func (r *DealRepository) List(ctx context.Context, filter DealFilter, page Page) ([]model.Deal, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Deal{})).Count(&total).Error; err != nil {
		return nil, 0, apperror.FromStorage(err, "Deal")
	}

	items := []model.Deal{}
	err := filter.apply(r.db.WithContext(ctx)).
		Preload("Lead.Company").
		Order("created_at DESC").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, apperror.FromStorage(err, "Deal")
	}
	return items, total, nil
}

// Get returns one deal with its lead and company.
func (r *DealRepository) Get(ctx context.Context, id string) (*model.Deal, error) {
	var deal model.Deal
	err := r.db.WithContext(ctx).Preload("Lead.Company").Where("id = ?", id).First(&deal).Error
	if err != nil {
		return nil, apperror.FromStorage(err, "Deal")
	}
	return &deal, nil
}

// Create inserts a deal after checking its lead exists.
func (r *DealRepository) Create(ctx context.Context, deal *model.Deal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &model.Lead{}, deal.LeadID, "Lead"); err != nil {
			return err
		}
		if err := tx.Create(deal).Error; err != nil {
			return err
		}
		return tx.Preload("Lead.Company").Where("id = ?", deal.ID).First(deal).Error
	})
	return apperror.FromStorage(err, "Deal")
}

// Update applies a partial update inside one transaction. When the update
// carries a stage, it is planned against the stage read in that transaction
// and the resulting transition is returned; otherwise the transition is nil.
func (r *DealRepository) Update(ctx context.Context, id string, updates Updates) (*model.Deal, *pipeline.Transition, error) {
	var (
		deal       model.Deal
		transition *pipeline.Transition
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deal).Error; err != nil {
			return err
		}
		if stage, ok := updates["stage"].(model.Stage); ok {
			t, err := pipeline.Plan(deal.Stage, stage)
			if err != nil {
				return apperror.Wrap(apperror.KindValidation, "Invalid stage", err)
			}
			transition = &t
		}
		if leadID, ok := updates["lead_id"].(string); ok {
			if err := requireExists(tx, &model.Lead{}, leadID, "Lead"); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&deal).Updates(map[string]interface{}(updates)).Error; err != nil {
				return err
			}
		}
		deal = model.Deal{}
		return tx.Preload("Lead.Company").Where("id = ?", id).First(&deal).Error
	})
	if err != nil {
		return nil, nil, apperror.FromStorage(err, "Deal")
	}
	return &deal, transition, nil
}

// Delete removes a deal. Deals have no dependents.
func (r *DealRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deal model.Deal
		if err := tx.Where("id = ?", id).First(&deal).Error; err != nil {
			return err
		}
		return tx.Delete(&deal).Error
	})
	return apperror.FromStorage(err, "Deal")
}
