package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suteetoe/minicrm/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of users created by CreateUser.
const DefaultPassword = "password123"

// CreateUser inserts a user whose password is DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCompany inserts a company.
func CreateCompany(t *testing.T, db *gorm.DB, name string) *model.Company {
	t.Helper()
	company := &model.Company{Name: name}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateLead inserts a NEW web lead for the company.
func CreateLead(t *testing.T, db *gorm.DB, companyID, contactName string) *model.Lead {
	t.Helper()
	lead := &model.Lead{
		CompanyID:   companyID,
		ContactName: contactName,
		Source:      model.SourceWeb,
		Status:      model.StatusNew,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// CreateDeal inserts a deal for the lead in the given stage.
func CreateDeal(t *testing.T, db *gorm.DB, leadID, title string, stage model.Stage) *model.Deal {
	t.Helper()
	deal := &model.Deal{LeadID: leadID, Title: title, Amount: 1000, Stage: stage}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

// CreateActivity inserts an open activity for the lead.
func CreateActivity(t *testing.T, db *gorm.DB, leadID string, typ model.ActivityType, content string) *model.Activity {
	t.Helper()
	activity := &model.Activity{LeadID: leadID, Type: typ, Content: content}
	require.NoError(t, db.Create(activity).Error)
	return activity
}
