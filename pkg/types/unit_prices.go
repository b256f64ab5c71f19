package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// UnitPriceLine is one quoted line item inside a proposal.
type UnitPriceLine struct {
	ItemName   string           `json:"itemName"`
	UnitPrice  *decimal.Decimal `json:"unitPrice"`
	Quantity   int              `json:"quantity"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
}

// UnitPriceLines is the ordered set of quoted lines, persisted as JSONB.
type UnitPriceLines []UnitPriceLine

// Value marshals the lines into JSON for Postgres.
func (u UnitPriceLines) Value() (driver.Value, error) {
	if u == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the slice.
func (u *UnitPriceLines) Scan(value interface{}) error {
	if value == nil {
		*u = nil
		return nil
	}

	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("unit prices: %w", err)
	}

	var result UnitPriceLines
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*u = result
	return nil
}
