package model

import "time"

// Deal is a sales opportunity attached to a lead. Stage is the only field
// with transition semantics; see package pipeline.
type Deal struct {
	Base
	LeadID            string     `json:"leadId" gorm:"type:varchar(36);index;not null"`
	Title             string     `json:"title" gorm:"type:varchar(255);not null"`
	Amount            float64    `json:"amount" gorm:"type:decimal(12,2);not null"`
	Stage             Stage      `json:"stage" gorm:"type:varchar(20);not null;default:'PROSPECTING';index"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`

	Lead *Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
}
