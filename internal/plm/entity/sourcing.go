package entity

import "time"

// Manufacturer makes parts; Seller sells them. Both are org-scoped name
// registries.
type Manufacturer struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;not null;index"`
	Name           string    `json:"name" gorm:"size:128;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}

// ManufacturerPart identifies a Part as made by a Manufacturer under a
// given manufacturer part number.
type ManufacturerPart struct {
	ID                     string    `json:"id" gorm:"primaryKey;size:32"`
	PartID                 string    `json:"part_id" gorm:"size:32;not null;uniqueIndex:idx_mpart_triple"`
	ManufacturerPartNumber string    `json:"manufacturer_part_number" gorm:"size:128;not null;uniqueIndex:idx_mpart_triple"`
	ManufacturerID         *string   `json:"manufacturer_id,omitempty" gorm:"size:32;uniqueIndex:idx_mpart_triple"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// Relations
	Part         *Part         `json:"part,omitempty" gorm:"foreignKey:PartID"`
	Manufacturer *Manufacturer `json:"manufacturer,omitempty" gorm:"foreignKey:ManufacturerID"`
	SellerParts  []SellerPart  `json:"seller_parts,omitempty" gorm:"foreignKey:ManufacturerPartID"`
}

func (ManufacturerPart) TableName() string {
	return "manufacturer_parts"
}

// Seller is unique per org by case-insensitive name; the service layer
// performs the lowercase lookup before insert.
type Seller struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	OrganizationID string    `json:"organization_id" gorm:"size:32;not null;uniqueIndex:idx_seller_org_name"`
	Name           string    `json:"name" gorm:"size:128;not null;uniqueIndex:idx_seller_org_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (Seller) TableName() string {
	return "sellers"
}

// SellerPart data sources
const (
	DataSourceManual = "manual"
	DataSourceMouser = "mouser"
)

// SellerPart is an offer by a Seller to sell a ManufacturerPart at a unit
// cost under MOQ/MPQ/lead-time terms. NRE is charged once per order.
type SellerPart struct {
	ID                   string    `json:"id" gorm:"primaryKey;size:32"`
	SellerID             string    `json:"seller_id" gorm:"size:32;not null;uniqueIndex:idx_sp_quad"`
	ManufacturerPartID   string    `json:"manufacturer_part_id" gorm:"size:32;not null;uniqueIndex:idx_sp_quad"`
	MinimumOrderQuantity int       `json:"minimum_order_quantity" gorm:"not null;default:1;uniqueIndex:idx_sp_quad"`
	MinimumPackQuantity  int       `json:"minimum_pack_quantity" gorm:"not null;default:1"`
	UnitCost             float64   `json:"unit_cost" gorm:"type:numeric(15,4);not null;uniqueIndex:idx_sp_quad"`
	LeadTimeDays         int       `json:"lead_time_days" gorm:"default:0"`
	NreCost              float64   `json:"nre_cost" gorm:"type:numeric(15,4);default:0"`
	Ncnr                 bool      `json:"ncnr" gorm:"default:false"`
	DataSource           string    `json:"data_source" gorm:"size:16;not null;default:manual"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Relations
	Seller           *Seller           `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	ManufacturerPart *ManufacturerPart `json:"manufacturer_part,omitempty" gorm:"foreignKey:ManufacturerPartID"`
}

func (SellerPart) TableName() string {
	return "seller_parts"
}
