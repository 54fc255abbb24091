package csvio

import (
	"context"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/service"
)

// ClassImporter ingests part-class CSV files.
type ClassImporter struct {
	classes *service.PartClassService
}

func NewClassImporter(classes *service.PartClassService) *ClassImporter {
	return &ClassImporter{classes: classes}
}

// Import reads a part-classes file and creates one class per valid row.
// Rows failing validation or colliding with existing codes are recorded
// and skipped.
func (im *ClassImporter) Import(ctx context.Context, org *entity.Organization, data []byte) (*ImportResult, error) {
	schema := PartClassesHeaders()
	header, body, err := ReadTable(data)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateNames(header); err != nil {
		return nil, err
	}
	if err := schema.ValidateAssertions(header); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, cells := range body {
		line := i + 2
		r := &row{schema: schema, header: header, cells: cells}

		input := &service.CreatePartClassInput{
			Code:          r.get("code"),
			Name:          r.get("name"),
			Comment:       r.get("comment"),
			MouserEnabled: truthy(r.get("mouser_enabled")),
		}
		class, err := im.classes.CreatePartClass(ctx, org.ID, input)
		if err != nil {
			result.errorf("row %d: %v", line, err)
			continue
		}
		result.successf("row %d: created class %s %s", line, class.Code, class.Name)
	}
	return result, nil
}
