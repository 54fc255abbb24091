package service

import (
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Services bundles the PLM services.
type Services struct {
	Organization *OrganizationService
	PartClass    *PartClassService
	Part         *PartService
	Revision     *RevisionService
	Assembly     *AssemblyService
	Sourcing     *SourcingService
	Bom          *BomService
}

// NewServices wires the service graph over the repositories.
func NewServices(repos *repository.Repositories, qtyCache *QuantityCache, logger *zap.Logger) *Services {
	sourcing := NewSourcingService(repos.Sourcing)
	assembly := NewAssemblyService(repos.Assembly, repos.Revision)
	return &Services{
		Organization: NewOrganizationService(repos.Organization, repos.User),
		PartClass:    NewPartClassService(repos.PartClass),
		Part:         NewPartService(repos.Part, repos.PartClass, repos.Organization, repos.Revision, repos.Assembly, repos.Sourcing),
		Revision:     NewRevisionService(repos.Revision, repos.Part, repos.Assembly),
		Assembly:     assembly,
		Sourcing:     sourcing,
		Bom:          NewBomService(assembly, sourcing, repos.Sourcing, qtyCache, logger),
	}
}

// newID returns a 32-char identifier, the id scheme used across all tables.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
