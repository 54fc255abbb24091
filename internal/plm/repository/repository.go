package repository

import "gorm.io/gorm"

// Repositories bundles every repository over one gorm handle.
type Repositories struct {
	Organization *OrganizationRepository
	User         *UserRepository
	PartClass    *PartClassRepository
	Part         *PartRepository
	Revision     *RevisionRepository
	Assembly     *AssemblyRepository
	Sourcing     *SourcingRepository
}

// NewRepositories wires all repositories against db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Organization: NewOrganizationRepository(db),
		User:         NewUserRepository(db),
		PartClass:    NewPartClassRepository(db),
		Part:         NewPartRepository(db),
		Revision:     NewRevisionRepository(db),
		Assembly:     NewAssemblyRepository(db),
		Sourcing:     NewSourcingRepository(db),
	}
}
