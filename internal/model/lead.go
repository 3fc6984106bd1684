package model

// Lead is a contact at a company that may turn into deals.
type Lead struct {
	Base
	CompanyID   string     `json:"companyId" gorm:"type:varchar(36);index;not null"`
	ContactName string     `json:"contactName" gorm:"type:varchar(255);not null"`
	Email       *string    `json:"email" gorm:"type:varchar(255)"`
	Phone       *string    `json:"phone" gorm:"type:varchar(50)"`
	Source      LeadSource `json:"source" gorm:"type:varchar(20);not null"`
	Status      LeadStatus `json:"status" gorm:"type:varchar(20);not null;default:'NEW';index"`
	Score       int        `json:"score" gorm:"not null;default:0"`

	Company    *Company   `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Deals      []Deal     `json:"deals,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:RESTRICT"`
	Activities []Activity `json:"activities,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:RESTRICT"`
	Count      *LeadCount `json:"_count,omitempty" gorm:"-"`
}

// LeadCount carries relation counts for the lead list.
type LeadCount struct {
	Deals      int64 `json:"deals"`
	Activities int64 `json:"activities"`
}

// LeadDetail is a lead with its company and every deal and activity. The
// slices are always present on the wire, even when empty.
type LeadDetail struct {
	Lead
	Deals      []Deal     `json:"deals"`
	Activities []Activity `json:"activities"`
}
