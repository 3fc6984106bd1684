package model

import "time"

// Activity is a note, task, call or email logged against a lead.
type Activity struct {
	Base
	LeadID    string       `json:"leadId" gorm:"type:varchar(36);index;not null"`
	Type      ActivityType `json:"type" gorm:"type:varchar(20);not null"`
	Content   string       `json:"content" gorm:"type:text;not null"`
	DueDate   *time.Time   `json:"dueDate"`
	Completed bool         `json:"completed" gorm:"not null;default:false"`

	Lead *Lead `json:"lead,omitempty" gorm:"foreignKey:LeadID"`
}
