// Package pricing abstracts external component-pricing providers. Provider
// failures map to a single "pricing unavailable" condition so callers can
// continue without sourcing data.
package pricing

import "context"

// PriceBreak is one quantity tier of an offer.
type PriceBreak struct {
	MinimumOrderQuantity int     `json:"minimum_order_quantity"`
	UnitCost             float64 `json:"unit_cost"`
	Currency             string  `json:"currency"`
}

// SearchResult is one offer returned for a manufacturer part number.
type SearchResult struct {
	Manufacturer string       `json:"manufacturer"`
	MPN          string       `json:"mpn"`
	Description  string       `json:"description"`
	DatasheetURL string       `json:"datasheet_url,omitempty"`
	Stock        int          `json:"stock"`
	LeadTimeDays int          `json:"lead_time_days"`
	PriceBreaks  []PriceBreak `json:"price_breaks"`
}

// Provider searches a distributor's catalog by manufacturer part number.
type Provider interface {
	Search(ctx context.Context, mpn string) ([]SearchResult, error)
}
