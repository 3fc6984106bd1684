package repository

import (
	"context"

	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/model"
	"gorm.io/gorm"
)

// CompanyRepository stores companies.
type CompanyRepository struct {
	db *gorm.DB
}

// List returns a page of companies, newest first, with lead counts.
func (r *CompanyRepository) List(ctx context.Context, page Page) ([]model.Company, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Company{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.FromStorage(err, "Company")
	}

	items := []model.Company{}
	err := db.Order("created_at DESC").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, apperror.FromStorage(err, "Company")
	}

	if err := r.attachCounts(db, items); err != nil {
		return nil, 0, apperror.FromStorage(err, "Company")
	}
	return items, total, nil
}

// Get returns one company with its lead count.
func (r *CompanyRepository) Get(ctx context.Context, id string) (*model.Company, error) {
	db := r.db.WithContext(ctx)

	var company model.Company
	if err := db.Where("id = ?", id).First(&company).Error; err != nil {
		return nil, apperror.FromStorage(err, "Company")
	}

	items := []model.Company{company}
	if err := r.attachCounts(db, items); err != nil {
		return nil, apperror.FromStorage(err, "Company")
	}
	return &items[0], nil
}

// Create inserts a company.
func (r *CompanyRepository) Create(ctx context.Context, company *model.Company) error {
	return apperror.FromStorage(r.db.WithContext(ctx).Create(company).Error, "Company")
}

// Update applies a partial update and returns the stored record.
func (r *CompanyRepository) Update(ctx context.Context, id string, updates Updates) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&company).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&company).Updates(map[string]interface{}(updates)).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&company).Error
	})
	if err != nil {
		return nil, apperror.FromStorage(err, "Company")
	}
	return &company, nil
}

// Delete removes a company. It is rejected while leads still reference it.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company model.Company
		if err := tx.Where("id = ?", id).First(&company).Error; err != nil {
			return err
		}
		if err := rejectDependents(tx, &model.Lead{}, "company_id", id, "Company still has leads"); err != nil {
			return err
		}
		return tx.Delete(&company).Error
	})
	return apperror.FromStorage(err, "Company")
}

func (r *CompanyRepository) attachCounts(db *gorm.DB, items []model.Company) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	leads, err := countBy(db, &model.Lead{}, "company_id", ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Count = &model.CompanyCount{Leads: leads[items[i].ID]}
	}
	return nil
}
