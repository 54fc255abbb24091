package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
)

// MaxBomDepth guards the indented traversal. A well-formed assembly graph
// is acyclic and far shallower; hitting the guard surfaces a graph
// recursion error with the partial BOM.
const MaxBomDepth = 100

// BomRecord is one line of the indented traversal. BomID is the revision
// id, suffixed "-dnl" for do-not-load instances so load/DNL lines of the
// same revision stay distinct.
type BomRecord struct {
	BomID            string               `json:"bom_id"`
	Part             *entity.Part         `json:"part"`
	PartRevision     *entity.PartRevision `json:"part_revision"`
	Subpart          *entity.Subpart      `json:"subpart,omitempty"`
	Quantity         int                  `json:"quantity"`
	ParentQuantity   int                  `json:"parent_quantity"`
	ExtendedQuantity int                  `json:"extended_quantity"`
	TotalQuantity    int                  `json:"total_quantity"`
	IndentLevel      int                  `json:"indent_level"`
	ParentID         string               `json:"parent_id,omitempty"`
	DoNotLoad        bool                 `json:"do_not_load"`
	Reference        string               `json:"reference,omitempty"`
}

func bomID(revisionID string, doNotLoad bool) string {
	if doNotLoad {
		return revisionID + "-dnl"
	}
	return revisionID
}

// IndentedBom walks the assembly graph of root depth-first, preserving
// subpart insertion order within each level. The root appears first at
// indent 0 with quantity 1. When the depth guard trips, the records
// gathered so far are returned together with a graph recursion error.
func (s *AssemblyService) IndentedBom(ctx context.Context, root *entity.PartRevision, topQuantity int) ([]BomRecord, error) {
	if topQuantity < 1 {
		topQuantity = 1
	}
	records := []BomRecord{{
		BomID:            root.ID,
		Part:             root.Part,
		PartRevision:     root,
		Quantity:         1,
		ParentQuantity:   1,
		ExtendedQuantity: 1,
		TotalQuantity:    topQuantity,
		IndentLevel:      0,
	}}
	err := s.walk(ctx, root, 1, topQuantity, 1, &records)
	return records, err
}

func (s *AssemblyService) walk(ctx context.Context, parent *entity.PartRevision, parentQty, topQuantity, depth int, records *[]BomRecord) error {
	if parent.AssemblyID == nil {
		return nil
	}
	if depth > MaxBomDepth {
		return plmerr.ErrGraphRecursion
	}
	subparts, err := s.assemblyRepo.ListSubparts(ctx, *parent.AssemblyID)
	if err != nil {
		return fmt.Errorf("list subparts: %w", err)
	}
	for i := range subparts {
		sp := subparts[i]
		rev := sp.PartRevision
		if rev == nil {
			continue
		}
		extended := parentQty * sp.Count
		*records = append(*records, BomRecord{
			BomID:            bomID(rev.ID, sp.DoNotLoad),
			Part:             rev.Part,
			PartRevision:     rev,
			Subpart:          &sp,
			Quantity:         sp.Count,
			ParentQuantity:   parentQty,
			ExtendedQuantity: extended,
			TotalQuantity:    topQuantity * extended,
			IndentLevel:      depth,
			ParentID:         parent.ID,
			DoNotLoad:        sp.DoNotLoad,
			Reference:        sp.Reference,
		})
		if err := s.walk(ctx, rev, extended, topQuantity, depth+1, records); err != nil {
			return err
		}
	}
	return nil
}

// FlatBomItem is one deduplicated line of the flat traversal. Load and
// do-not-load instances of a revision fold together; callers that need
// them separate use the indented view.
type FlatBomItem struct {
	Part         *entity.Part         `json:"part"`
	PartRevision *entity.PartRevision `json:"part_revision"`
	Quantity     int                  `json:"quantity"`
	References   string               `json:"references,omitempty"`
}

// FlatBom folds the indented traversal by revision, summing total
// quantities and joining references with ", ". Lines are ordered by
// natural reference-designator order, falling back to part number.
func (s *AssemblyService) FlatBom(ctx context.Context, root *entity.PartRevision, topQuantity int) ([]FlatBomItem, error) {
	records, err := s.IndentedBom(ctx, root, topQuantity)
	if err != nil && len(records) == 0 {
		return nil, err
	}

	byRev := make(map[string]*FlatBomItem)
	var order []string
	for i := range records {
		rec := &records[i]
		item, ok := byRev[rec.PartRevision.ID]
		if !ok {
			item = &FlatBomItem{Part: rec.Part, PartRevision: rec.PartRevision}
			byRev[rec.PartRevision.ID] = item
			order = append(order, rec.PartRevision.ID)
		}
		item.Quantity += rec.TotalQuantity
		if rec.Reference != "" {
			if item.References != "" {
				item.References += ", "
			}
			item.References += rec.Reference
		}
	}

	items := make([]FlatBomItem, 0, len(order))
	for _, id := range order {
		items = append(items, *byRev[id])
	}
	sort.SliceStable(items, func(i, j int) bool {
		return flatLess(&items[i], &items[j])
	})
	return items, err
}

func flatLess(a, b *FlatBomItem) bool {
	ra, rb := firstDesignator(a.References), firstDesignator(b.References)
	switch {
	case ra != "" && rb != "":
		return designatorLess(ra, rb)
	case ra != "":
		return true
	case rb != "":
		return false
	default:
		return partNumberOf(a) < partNumberOf(b)
	}
}

func partNumberOf(item *FlatBomItem) string {
	if item.Part == nil {
		return ""
	}
	return item.Part.FullNumber()
}

func firstDesignator(refs string) string {
	for _, r := range strings.Split(refs, ",") {
		if r = strings.TrimSpace(r); r != "" {
			return r
		}
	}
	return ""
}

// designatorLess compares designators naturally: alphabetic prefixes
// lexicographically, numeric suffixes numerically, so R5 < R14.
func designatorLess(a, b string) bool {
	pa, na := splitDesignator(a)
	pb, nb := splitDesignator(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitDesignator(d string) (prefix string, num int) {
	i := len(d)
	for i > 0 && d[i-1] >= '0' && d[i-1] <= '9' {
		i--
	}
	prefix = d[:i]
	for _, c := range d[i:] {
		num = num*10 + int(c-'0')
	}
	return prefix, num
}
