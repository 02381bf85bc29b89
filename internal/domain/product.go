package domain

import (
	"strings"

	"github.com/spf13/cast"
)

// SafeFloat is a float64 CSV cell that never fails to parse: malformed
// values coerce to zero instead of aborting the catalog load.
type SafeFloat float64

func (f *SafeFloat) UnmarshalCSV(s string) error {
	*f = SafeFloat(cast.ToFloat64(strings.TrimSpace(s)))
	return nil
}

// SafeInt is the integer counterpart of SafeFloat.
type SafeInt int

func (i *SafeInt) UnmarshalCSV(s string) error {
	*i = SafeInt(cast.ToInt(strings.TrimSpace(s)))
	return nil
}

// Product is a row of the main catalog table. Model is the primary
// match key; Inch stays raw because absence and malformed values must
// both silently skip the laptop-bag rule rather than read as zero.
type Product struct {
	Model        string    `csv:"model" json:"model"`
	Brand        string    `csv:"brand" json:"brand"`
	Category     string    `csv:"category" json:"category"`
	ProductTitle string    `csv:"product_title" json:"product_title"`
	Price        SafeFloat `csv:"price" json:"price"`
	Rating       SafeFloat `csv:"rating" json:"rating"`
	ReviewCount  SafeInt   `csv:"review_count" json:"review_count"`
	ImageURL     string    `csv:"image_url" json:"image_url"`
	Inch         string    `csv:"inch" json:"inch,omitempty"`
}

// Accessory is a row of the laptop- or mobile-accessory table.
// Category here is the accessory sub-type ("charger", "mouse", ...);
// Model associates the row with a specific product, empty means any.
type Accessory struct {
	Category     string    `csv:"category" json:"category"`
	Model        string    `csv:"model" json:"model,omitempty"`
	Brand        string    `csv:"brand" json:"brand"`
	ProductTitle string    `csv:"product_title" json:"product_title"`
	Price        SafeFloat `csv:"price" json:"price"`
	Rating       SafeFloat `csv:"rating" json:"rating"`
	ReviewCount  SafeInt   `csv:"review_count" json:"review_count"`
	ImageURL     string    `csv:"image_url" json:"image_url"`
	Inch         string    `csv:"inch" json:"inch,omitempty"`
}

// Top-level product categories of the main catalog.
const (
	CategoryLaptops     = "laptops"
	CategorySmartphones = "smartphones"
)

// Normalize is the single string-key normalization used by every
// lookup in the system: lowercase plus surrounding whitespace trim.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// KeyEqual reports whether two keys are equal after normalization.
func KeyEqual(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
