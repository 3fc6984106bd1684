package handler

import (
	"time"

	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/validation"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateCompanyRequest is the body of POST /companies.
type CreateCompanyRequest struct {
	Name   string  `json:"name" validate:"required,max=255"`
	Domain *string `json:"domain" validate:"omitempty,max=255" patch:"nullable"`
	Notes  *string `json:"notes" patch:"nullable"`
}

// UpdateCompanyRequest is the body of PATCH /companies/:id.
type UpdateCompanyRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Domain *string `json:"domain" validate:"omitempty,max=255" patch:"nullable"`
	Notes  *string `json:"notes" patch:"nullable"`
}

func (r *UpdateCompanyRequest) updates(present validation.Fields) repository.Updates {
	u := repository.Updates{}
	if r.Name != nil {
		u["name"] = *r.Name
	}
	setNullable(u, present, "domain", "domain", r.Domain)
	setNullable(u, present, "notes", "notes", r.Notes)
	return u
}

// CreateLeadRequest is the body of POST /leads.
type CreateLeadRequest struct {
	CompanyID   string  `json:"companyId" validate:"required,uuid"`
	ContactName string  `json:"contactName" validate:"required,max=255"`
	Email       *string `json:"email" validate:"omitempty,email,max=255" patch:"nullable"`
	Phone       *string `json:"phone" validate:"omitempty,max=50" patch:"nullable"`
	Source      string  `json:"source" validate:"required,oneof=WEB REFERRAL EVENT OTHER"`
	Status      string  `json:"status" validate:"omitempty,oneof=NEW QUALIFIED LOST"`
	Score       *int    `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// UpdateLeadRequest is the body of PATCH /leads/:id.
type UpdateLeadRequest struct {
	CompanyID   *string `json:"companyId" validate:"omitempty,uuid"`
	ContactName *string `json:"contactName" validate:"omitempty,min=1,max=255"`
	Email       *string `json:"email" validate:"omitempty,email,max=255" patch:"nullable"`
	Phone       *string `json:"phone" validate:"omitempty,max=50" patch:"nullable"`
	Source      *string `json:"source" validate:"omitempty,oneof=WEB REFERRAL EVENT OTHER"`
	Status      *string `json:"status" validate:"omitempty,oneof=NEW QUALIFIED LOST"`
	Score       *int    `json:"score" validate:"omitempty,gte=0,lte=100"`
}

func (r *UpdateLeadRequest) updates(present validation.Fields) repository.Updates {
	u := repository.Updates{}
	if r.CompanyID != nil {
		u["company_id"] = *r.CompanyID
	}
	if r.ContactName != nil {
		u["contact_name"] = *r.ContactName
	}
	setNullable(u, present, "email", "email", r.Email)
	setNullable(u, present, "phone", "phone", r.Phone)
	if r.Source != nil {
		u["source"] = *r.Source
	}
	if r.Status != nil {
		u["status"] = *r.Status
	}
	if r.Score != nil {
		u["score"] = *r.Score
	}
	return u
}

// CreateDealRequest is the body of POST /deals.
type CreateDealRequest struct {
	LeadID            string   `json:"leadId" validate:"required,uuid"`
	Title             string   `json:"title" validate:"required,max=255"`
	Amount            *float64 `json:"amount" validate:"required,gt=0"`
	Stage             string   `json:"stage" validate:"omitempty,oneof=PROSPECTING PROPOSAL NEGOTIATION WON LOST"`
	ExpectedCloseDate *string  `json:"expectedCloseDate" validate:"omitempty,rfc3339" patch:"nullable"`
}

// UpdateDealRequest is the body of PATCH /deals/:id. A stage change is the
// pipeline move; it may be sent alone or with other fields.
type UpdateDealRequest struct {
	LeadID            *string  `json:"leadId" validate:"omitempty,uuid"`
	Title             *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Amount            *float64 `json:"amount" validate:"omitempty,gt=0"`
	Stage             *string  `json:"stage" validate:"omitempty,oneof=PROSPECTING PROPOSAL NEGOTIATION WON LOST"`
	ExpectedCloseDate *string  `json:"expectedCloseDate" validate:"omitempty,rfc3339" patch:"nullable"`
}

// CreateActivityRequest is the body of POST /activities.
type CreateActivityRequest struct {
	LeadID    string  `json:"leadId" validate:"required,uuid"`
	Type      string  `json:"type" validate:"required,oneof=NOTE TASK CALL EMAIL"`
	Content   string  `json:"content" validate:"required"`
	DueDate   *string `json:"dueDate" validate:"omitempty,rfc3339" patch:"nullable"`
	Completed *bool   `json:"completed"`
}

// UpdateActivityRequest is the body of PATCH /activities/:id.
type UpdateActivityRequest struct {
	LeadID    *string `json:"leadId" validate:"omitempty,uuid"`
	Type      *string `json:"type" validate:"omitempty,oneof=NOTE TASK CALL EMAIL"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	DueDate   *string `json:"dueDate" validate:"omitempty,rfc3339" patch:"nullable"`
	Completed *bool   `json:"completed"`
}

func (r *UpdateActivityRequest) updates(present validation.Fields) repository.Updates {
	u := repository.Updates{}
	if r.LeadID != nil {
		u["lead_id"] = *r.LeadID
	}
	if r.Type != nil {
		u["type"] = *r.Type
	}
	if r.Content != nil {
		u["content"] = *r.Content
	}
	setNullableTime(u, present, "dueDate", "due_date", r.DueDate)
	if r.Completed != nil {
		u["completed"] = *r.Completed
	}
	return u
}

// setNullable writes value, or NULL when the key was sent as null.
func setNullable(u repository.Updates, present validation.Fields, key, column string, value *string) {
	if !present.Has(key) {
		return
	}
	if value == nil {
		u[column] = nil
		return
	}
	u[column] = *value
}

func setNullableTime(u repository.Updates, present validation.Fields, key, column string, value *string) {
	if !present.Has(key) {
		return
	}
	if t := parseTime(value); t != nil {
		u[column] = *t
		return
	}
	u[column] = nil
}

// parseTime converts an already validated RFC 3339 string. A nil result is
// stored as NULL.
func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
