package inventory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Supplier is a catalog supplier.
type Supplier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog entry. Price is formatted to two decimals for
// responses; storage keeps the raw float.
type Product struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Supplier Supplier `json:"supplier"`
}

// ProductInput describes a product row to insert. The populate response
// echoes the generated rows, so fields carry their wire names.
type ProductInput struct {
	Flavor     string  `json:"flavor"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Image      string  `json:"image"`
	SupplierID int64   `json:"supplier"`
}

// ProductPatch carries the optional fields of a partial update.
type ProductPatch struct {
	Name       *string
	Price      *float64
	SupplierID *int64
}

// PriceFilter restricts listings by price.
type PriceFilter struct {
	Operator string
	Value    int
}

// ErrSupplierNotFound indicates a reference to a missing supplier.
var ErrSupplierNotFound = errors.New("inventory: supplier not found")

// ParsePriceFilter decodes the query form "lt:30", "gte:10" and so on.
// Unknown operators yield no filter.
func ParsePriceFilter(raw string) *PriceFilter {
	if raw == "" {
		return nil
	}
	operator, rawValue, found := strings.Cut(raw, ":")
	if !found {
		return nil
	}
	value, err := strconv.Atoi(rawValue)
	if err != nil {
		return nil
	}
	switch operator {
	case "lt":
		return &PriceFilter{Operator: "<", Value: value}
	case "lte":
		return &PriceFilter{Operator: "<=", Value: value}
	case "gt":
		return &PriceFilter{Operator: ">", Value: value}
	case "gte":
		return &PriceFilter{Operator: ">=", Value: value}
	}
	return nil
}

// FormatPrice renders a price with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", math.Round(price*100)/100)
}

// ToNearestTenCent rounds a price up to the nearest ten cents.
func ToNearestTenCent(price float64) float64 {
	return math.Ceil(price*10) / 10
}
