package model

// Company is an organisation that owns leads.
type Company struct {
	Base
	Name   string  `json:"name" gorm:"type:varchar(255);not null"`
	Domain *string `json:"domain"`
	Notes  *string `json:"notes" gorm:"type:text"`

	Leads []Lead        `json:"-" gorm:"foreignKey:CompanyID;constraint:OnDelete:RESTRICT"`
	Count *CompanyCount `json:"_count,omitempty" gorm:"-"`
}

// CompanyCount carries relation counts for list and detail views.
type CompanyCount struct {
	Leads int64 `json:"leads"`
}
