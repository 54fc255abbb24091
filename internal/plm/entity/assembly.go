package entity

import "time"

// Assembly is an ordered set of sub-part references owned by exactly one
// PartRevision. The revision→assembly→subpart→revision graph must stay
// acyclic; the assembly service enforces that on every subpart add.
type Assembly struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Assembly) TableName() string {
	return "assemblies"
}

// Subpart is one line in an assembly: a target PartRevision with a count,
// reference designators, and a do-not-load flag. Count must equal the
// number of designators when Reference is non-empty, and 1 when it is empty.
type Subpart struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	PartRevisionID string    `json:"part_revision_id" gorm:"size:32;not null;index"`
	Count          int       `json:"count" gorm:"not null;default:1"`
	Reference      string    `json:"reference" gorm:"size:512;not null;default:''"`
	DoNotLoad      bool      `json:"do_not_load" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	PartRevision *PartRevision `json:"part_revision,omitempty" gorm:"foreignKey:PartRevisionID"`
}

func (Subpart) TableName() string {
	return "subparts"
}

// AssemblySubpart is the ordered join between an assembly and its subparts.
// Sequence preserves insertion order for the indented traversal.
type AssemblySubpart struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	AssemblyID string    `json:"assembly_id" gorm:"size:32;not null;uniqueIndex:idx_asm_subpart"`
	SubpartID  string    `json:"subpart_id" gorm:"size:32;not null;uniqueIndex:idx_asm_subpart"`
	Sequence   int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Assembly *Assembly `json:"assembly,omitempty" gorm:"foreignKey:AssemblyID"`
	Subpart  *Subpart  `json:"subpart,omitempty" gorm:"foreignKey:SubpartID"`
}

func (AssemblySubpart) TableName() string {
	return "assembly_subparts"
}
