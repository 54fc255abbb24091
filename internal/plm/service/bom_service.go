package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"go.uber.org/zap"
)

// DefaultExtractQuantity seeds the rollup when the caller gives no
// quantity and the cache has none for the part.
const DefaultExtractQuantity = 100

type BomService struct {
	assembly     *AssemblyService
	sourcing     *SourcingService
	sourcingRepo *repository.SourcingRepository
	qtyCache     *QuantityCache
	logger       *zap.Logger
}

func NewBomService(assembly *AssemblyService, sourcing *SourcingService,
	sourcingRepo *repository.SourcingRepository, qtyCache *QuantityCache, logger *zap.Logger) *BomService {
	return &BomService{
		assembly:     assembly,
		sourcing:     sourcing,
		sourcingRepo: sourcingRepo,
		qtyCache:     qtyCache,
		logger:       logger,
	}
}

// PartBomItem is one costed line of a rollup. Load and do-not-load
// instances of a revision stay separate; do-not-load lines carry zero
// order quantity and zero cost.
type PartBomItem struct {
	BomID         string               `json:"bom_id"`
	Part          *entity.Part         `json:"part"`
	PartRevision  *entity.PartRevision `json:"part_revision"`
	Quantity      int                  `json:"quantity"`
	TotalQuantity int                  `json:"total_quantity"`
	References    string               `json:"references,omitempty"`
	DoNotLoad     bool                 `json:"do_not_load"`

	SellerPart      *entity.SellerPart `json:"seller_part,omitempty"`
	OrderQuantity   int                `json:"order_quantity"`
	UnitCost        float64            `json:"unit_cost"`
	OutOfPocketCost float64            `json:"out_of_pocket_cost"`
	NreCost         float64            `json:"nre_cost"`
}

// ExtendedCost is the line's contribution to the cost of one top assembly.
func (i *PartBomItem) ExtendedCost() float64 {
	if i.DoNotLoad {
		return 0
	}
	return i.UnitCost * float64(i.Quantity)
}

// PartBom is the costed rollup of one revision at an extract quantity.
type PartBom struct {
	Part         *entity.Part         `json:"part"`
	PartRevision *entity.PartRevision `json:"part_revision"`
	Quantity     int                  `json:"quantity"`
	Items        []PartBomItem        `json:"items"`

	UnitCost         float64 `json:"unit_cost"`
	NreCost          float64 `json:"nre_cost"`
	OutOfPocketCost  float64 `json:"out_of_pocket_cost"`
	MissingItemCount int     `json:"missing_item_count"`
}

// Cost is the material cost of the full run: per-assembly cost times the
// extract quantity.
func (b *PartBom) Cost() float64 {
	return b.UnitCost * float64(b.Quantity)
}

// TotalOutOfPocket is what actually leaves the wallet: ordered material
// plus one-time NRE.
func (b *PartBom) TotalOutOfPocket() float64 {
	return b.OutOfPocketCost + b.NreCost
}

// Rollup walks the assembly of root, folds duplicate lines, and costs each
// line with its optimal seller at the line's total quantity across the
// whole run. Quantity 0 falls back to the part's last-used quantity, then
// to the default. Folding happens before seller selection so repeated
// lines are priced once at their combined quantity regardless of graph
// shape.
func (s *BomService) Rollup(ctx context.Context, root *entity.PartRevision, quantity int) (*PartBom, error) {
	if quantity <= 0 {
		if cached, ok := s.qtyCache.Get(ctx, root.PartID); ok {
			quantity = cached
		} else {
			quantity = DefaultExtractQuantity
		}
	}

	records, err := s.assembly.IndentedBom(ctx, root, quantity)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		return nil, fmt.Errorf("rollup traversal: %w", err)
	}
	walkErr := err

	bom := &PartBom{Part: root.Part, PartRevision: root, Quantity: quantity}
	byBomID := make(map[string]*PartBomItem)
	var order []string
	for i := range records {
		rec := &records[i]
		item, ok := byBomID[rec.BomID]
		if !ok {
			item = &PartBomItem{
				BomID:        rec.BomID,
				Part:         rec.Part,
				PartRevision: rec.PartRevision,
				DoNotLoad:    rec.DoNotLoad,
			}
			byBomID[rec.BomID] = item
			order = append(order, rec.BomID)
		}
		item.Quantity += rec.ExtendedQuantity
		item.TotalQuantity += rec.TotalQuantity
		if rec.Reference != "" {
			if item.References != "" {
				item.References += ", "
			}
			item.References += rec.Reference
		}
	}

	offersByPart := make(map[string][]entity.SellerPart)
	for _, id := range order {
		item := byBomID[id]
		// The top assembly heads the bom but is not itself sourced.
		if id == root.ID || item.DoNotLoad || item.Part == nil {
			bom.Items = append(bom.Items, *item)
			continue
		}
		offers, ok := offersByPart[item.Part.ID]
		if !ok {
			if offers, err = s.sourcingRepo.ListSellerPartsByPart(ctx, item.Part.ID); err != nil {
				return nil, fmt.Errorf("rollup offers: %w", err)
			}
			offersByPart[item.Part.ID] = offers
		}
		best := BestSellerPart(offers, item.TotalQuantity)
		if best == nil {
			bom.MissingItemCount++
			s.logger.Debug("no seller for part",
				zap.String("part_id", item.Part.ID),
				zap.Int("quantity", item.TotalQuantity))
			bom.Items = append(bom.Items, *item)
			continue
		}
		item.SellerPart = best
		item.OrderQuantity = OrderQuantity(best, item.TotalQuantity)
		item.UnitCost = best.UnitCost
		item.OutOfPocketCost = float64(item.OrderQuantity) * best.UnitCost
		item.NreCost = best.NreCost

		bom.UnitCost += item.ExtendedCost()
		bom.OutOfPocketCost += item.OutOfPocketCost
		bom.NreCost += item.NreCost
		bom.Items = append(bom.Items, *item)
	}

	s.qtyCache.Set(ctx, root.PartID, quantity)
	return bom, walkErr
}
