package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"go.uber.org/zap"
)

const mouserSearchPath = "/api/v1/search/partnumber"

// MouserProvider queries the Mouser part search API. Any transport or
// non-success response maps to a provider error.
type MouserProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewMouserProvider(baseURL, apiKey string, logger *zap.Logger) *MouserProvider {
	return &MouserProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type mouserSearchRequest struct {
	SearchByPartRequest struct {
		MouserPartNumber string `json:"mouserPartNumber"`
	} `json:"SearchByPartRequest"`
}

type mouserSearchResponse struct {
	Errors []struct {
		Message string `json:"Message"`
	} `json:"Errors"`
	SearchResults struct {
		Parts []struct {
			Manufacturer           string `json:"Manufacturer"`
			ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
			Description            string `json:"Description"`
			DataSheetURL           string `json:"DataSheetUrl"`
			Availability           string `json:"Availability"`
			LeadTime               string `json:"LeadTime"`
			PriceBreaks            []struct {
				Quantity int    `json:"Quantity"`
				Price    string `json:"Price"`
				Currency string `json:"Currency"`
			} `json:"PriceBreaks"`
		} `json:"Parts"`
	} `json:"SearchResults"`
}

// Search implements Provider.
func (p *MouserProvider) Search(ctx context.Context, mpn string) ([]SearchResult, error) {
	var reqBody mouserSearchRequest
	reqBody.SearchByPartRequest.MouserPartNumber = mpn
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s%s?apiKey=%s", p.baseURL, mouserSearchPath, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, plmerr.Providerf("mouser unreachable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, plmerr.Providerf("mouser returned status %d", resp.StatusCode)
	}

	var body mouserSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, plmerr.Providerf("mouser response not parseable: %v", err)
	}
	if len(body.Errors) > 0 {
		return nil, plmerr.Providerf("mouser error: %s", body.Errors[0].Message)
	}

	results := make([]SearchResult, 0, len(body.SearchResults.Parts))
	for _, part := range body.SearchResults.Parts {
		result := SearchResult{
			Manufacturer: part.Manufacturer,
			MPN:          part.ManufacturerPartNumber,
			Description:  part.Description,
			DatasheetURL: part.DataSheetURL,
			Stock:        parseLeadingInt(part.Availability),
			LeadTimeDays: parseLeadingInt(part.LeadTime),
		}
		for _, pb := range part.PriceBreaks {
			cost, err := strconv.ParseFloat(strings.TrimLeft(pb.Price, "$€£¥ "), 64)
			if err != nil {
				p.logger.Debug("skipping unparseable price break",
					zap.String("mpn", mpn),
					zap.String("price", pb.Price))
				continue
			}
			result.PriceBreaks = append(result.PriceBreaks, PriceBreak{
				MinimumOrderQuantity: pb.Quantity,
				UnitCost:             cost,
				Currency:             pb.Currency,
			})
		}
		results = append(results, result)
	}
	return results, nil
}

// parseLeadingInt reads the integer prefix of strings like "4232 In Stock"
// or "28 Days", 0 when there is none.
func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n
}
