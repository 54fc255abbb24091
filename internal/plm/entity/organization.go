package entity

import "time"

// Numbering schemes. Semi-intelligent numbers are structured
// class-item-variation triples; intelligent numbers are opaque strings.
const (
	NumberSchemeSemiIntelligent = "semi-intelligent"
	NumberSchemeIntelligent     = "intelligent"
)

// Part class codes are always three digits regardless of org settings.
const NumberClassCodeLen = 3

// Organization is the tenancy root. All catalog data hangs off one org.
type Organization struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:32"`
	Name               string    `json:"name" gorm:"size:128;not null"`
	NumberScheme       string    `json:"number_scheme" gorm:"size:32;not null;default:semi-intelligent"`
	NumberItemLen      int       `json:"number_item_len" gorm:"not null;default:4"`
	// No column default: zero means the org's numbers carry no variation
	// segment, so gorm must not rewrite it at insert.
	NumberVariationLen int       `json:"number_variation_len" gorm:"not null"`
	OwnerID            string    `json:"owner_id" gorm:"size:32;not null"`
	Currency           string    `json:"currency" gorm:"size:3;not null;default:USD"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Relations
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (Organization) TableName() string {
	return "organizations"
}

// User is the minimal account record carried by the PLM core. Authentication
// is external; the core only needs identity for ownership and auditing.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Username  string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:128"`
	Email     string    `json:"email" gorm:"size:128"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserMeta roles
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// UserMeta holds per-user org membership and role. Exactly one per user.
type UserMeta struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	UserID         string    `json:"user_id" gorm:"size:32;not null;uniqueIndex"`
	OrganizationID *string   `json:"organization_id,omitempty" gorm:"size:32;index"`
	Role           string    `json:"role" gorm:"size:16;not null;default:viewer"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	User         *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (UserMeta) TableName() string {
	return "user_metas"
}
