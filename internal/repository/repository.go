// Package repository stores CRM entities with gorm. Every method returns
// errors already translated into the apperror taxonomy.
package repository

import (
	"context"
	"strings"

	"github.com/suteetoe/minicrm/internal/apperror"
	"gorm.io/gorm"
)

// Page selects a window of a list.
type Page struct {
	Limit  int
	Offset int
}

// Updates maps column names to new values for a partial update. A nil value
// clears a nullable column.
type Updates map[string]interface{}

// Store bundles the repositories over one database handle.
type Store struct {
	db *gorm.DB

	Users      *UserRepository
	Companies  *CompanyRepository
	Leads      *LeadRepository
	Deals      *DealRepository
	Activities *ActivityRepository
}

// NewStore creates repositories sharing db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      &UserRepository{db: db},
		Companies:  &CompanyRepository{db: db},
		Leads:      &LeadRepository{db: db},
		Deals:      &DealRepository{db: db},
		Activities: &ActivityRepository{db: db},
	}
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type countRow struct {
	ParentID string
	N        int64
}

// countBy returns child row counts per parent id for the given table column.
func countBy(tx *gorm.DB, child interface{}, column string, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []countRow
	err := tx.Model(child).
		Select(column+" AS parent_id, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ParentID] = row.N
	}
	return counts, nil
}

// requireExists fails with INVALID_REFERENCE when no row of m has the id.
func requireExists(tx *gorm.DB, m interface{}, id, entity string) error {
	var n int64
	if err := tx.Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperror.FromStorage(err, entity)
	}
	if n == 0 {
		return apperror.New(apperror.KindInvalidReference, "Referenced "+strings.ToLower(entity)+" does not exist")
	}
	return nil
}

// rejectDependents fails with INVALID_REFERENCE while child rows still point
// at the parent. Deletes never cascade.
func rejectDependents(tx *gorm.DB, child interface{}, column, id, message string) error {
	var n int64
	if err := tx.Model(child).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperror.New(apperror.KindInvalidReference, message)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern for substring search.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
