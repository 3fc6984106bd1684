package repository

import (
	"context"

	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
	"gorm.io/gorm"
)

// LeadFilter narrows a lead list. Zero values do not filter.
type LeadFilter struct {
	// Q matches contact name, email or phone, case-insensitively.
	Q         string
	Status    *model.LeadStatus
	CompanyID string
}

func (f LeadFilter) apply(tx *gorm.DB) *gorm.DB {
	if f.Q != "" {
		p := containsPattern(f.Q)
		tx = tx.Where(`(LOWER(contact_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(phone) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	if f.CompanyID != "" {
		tx = tx.Where("company_id = ?", f.CompanyID)
	}
	return tx
}

// LeadRepository stores leads.
type LeadRepository struct {
	db *gorm.DB
}

// List returns a filtered page of leads, newest first, with their company
// and deal and activity counts.
func (r *LeadRepository) List(ctx context.Context, filter LeadFilter, page Page) ([]model.Lead, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Lead{})).Count(&total).Error; err != nil {
		return nil, 0, apperror.FromStorage(err, "Lead")
	}

	items := []model.Lead{}
	err := filter.apply(r.db.WithContext(ctx)).
		Preload("Company").
		Order("created_at DESC").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, apperror.FromStorage(err, "Lead")
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	db := r.db.WithContext(ctx)
	deals, err := countBy(db, &model.Deal{}, "lead_id", ids)
	if err != nil {
		return nil, 0, apperror.FromStorage(err, "Lead")
	}
	activities, err := countBy(db, &model.Activity{}, "lead_id", ids)
	if err != nil {
		return nil, 0, apperror.FromStorage(err, "Lead")
	}
	for i := range items {
		items[i].Count = &model.LeadCount{
			Deals:      deals[items[i].ID],
			Activities: activities[items[i].ID],
		}
	}
	return items, total, nil
}

// Get returns a lead with its company and all of its deals and activities,
// each newest first.
func (r *LeadRepository) Get(ctx context.Context, id string) (*model.LeadDetail, error) {
	db := r.db.WithContext(ctx)

	var detail model.LeadDetail
	if err := db.Preload("Company").Where("id = ?", id).First(&detail.Lead).Error; err != nil {
		return nil, apperror.FromStorage(err, "Lead")
	}

	detail.Deals = []model.Deal{}
	if err := db.Where("lead_id = ?", id).Order("created_at DESC").Find(&detail.Deals).Error; err != nil {
		return nil, apperror.FromStorage(err, "Lead")
	}
	detail.Activities = []model.Activity{}
	if err := db.Where("lead_id = ?", id).Order("created_at DESC").Find(&detail.Activities).Error; err != nil {
		return nil, apperror.FromStorage(err, "Lead")
	}
	return &detail, nil
}

// Create inserts a lead after checking its company exists, and returns it
// with the company loaded.
func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &model.Company{}, lead.CompanyID, "Company"); err != nil {
			return err
		}
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		return tx.Preload("Company").Where("id = ?", lead.ID).First(lead).Error
	})
	return apperror.FromStorage(err, "Lead")
}

// Update applies a partial update. A changed company_id must reference an
// existing company.
func (r *LeadRepository) Update(ctx context.Context, id string, updates Updates) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&lead).Error; err != nil {
			return err
		}
		if companyID, ok := updates["company_id"].(string); ok {
			if err := requireExists(tx, &model.Company{}, companyID, "Company"); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&lead).Updates(map[string]interface{}(updates)).Error; err != nil {
				return err
			}
		}
		lead = model.Lead{}
		return tx.Preload("Company").Where("id = ?", id).First(&lead).Error
	})
	if err != nil {
		return nil, apperror.FromStorage(err, "Lead")
	}
	return &lead, nil
}

// Delete removes a lead that has no deals and no activities.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead model.Lead
		if err := tx.Where("id = ?", id).First(&lead).Error; err != nil {
			return err
		}
		if err := rejectDependents(tx, &model.Deal{}, "lead_id", id, "Lead still has deals"); err != nil {
			return err
		}
		if err := rejectDependents(tx, &model.Activity{}, "lead_id", id, "Lead still has activities"); err != nil {
			return err
		}
		return tx.Delete(&lead).Error
	})
	return apperror.FromStorage(err, "Lead")
}
