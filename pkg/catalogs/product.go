package catalogs

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agentstation/ordermatch/pkg/constants"
)

// Product is a catalog record with its logical fields resolved. Values are kept
// as the strings found in the catalog.
type Product struct {
	Table         string `json:"table" yaml:"table"`
	Name          string `json:"name" yaml:"name"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
	PurchasePrice string `json:"purchase_price,omitempty" yaml:"purchase_price,omitempty"`
	SupplyPrice   string `json:"supply_price,omitempty" yaml:"supply_price,omitempty"`
	Vendor        string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
	Option        string `json:"option,omitempty" yaml:"option,omitempty"`
}

// SoldOut reports whether the product comes from a table flagged as sold out.
func (p Product) SoldOut() bool {
	return strings.Contains(p.Table, constants.SoldOutMarker)
}

// Margin returns supply price minus purchase price. ok is false when either
// price is not a number.
func (p Product) Margin() (margin decimal.Decimal, ok bool) {
	purchase, err := ParsePrice(p.PurchasePrice)
	if err != nil {
		return decimal.Zero, false
	}
	supply, err := ParsePrice(p.SupplyPrice)
	if err != nil {
		return decimal.Zero, false
	}
	return supply.Sub(purchase), true
}

var priceCleaner = strings.NewReplacer(",", "", "원", "", "₩", "", " ", "")

// ParsePrice parses a catalog price cell such as "75,000" or "₩75000원".
func ParsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(priceCleaner.Replace(strings.TrimSpace(s)))
}
