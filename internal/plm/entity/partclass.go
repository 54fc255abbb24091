package entity

import "time"

// PartClass is a numeric category code grouping parts. Only meaningful in
// the semi-intelligent numbering scheme, where it forms the first segment
// of every part number.
type PartClass struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;not null;uniqueIndex:idx_class_org_code;uniqueIndex:idx_class_org_code_name"`
	Code           string    `json:"code" gorm:"size:8;not null;uniqueIndex:idx_class_org_code;uniqueIndex:idx_class_org_code_name"`
	Name           string    `json:"name" gorm:"size:128;not null;uniqueIndex:idx_class_org_code_name"`
	Comment        string    `json:"comment,omitempty" gorm:"type:text"`
	MouserEnabled  bool      `json:"mouser_enabled" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (PartClass) TableName() string {
	return "part_classes"
}
