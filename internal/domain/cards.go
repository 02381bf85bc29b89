package domain

import (
	"strings"

	"github.com/montanaflynn/stats"
)

// ProductCard is the wire form of a product in responses. Field names
// are part of the public contract, do not rename.
type ProductCard struct {
	BrandType   string  `json:"brand_type,omitempty"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Stars       string  `json:"stars"`
	ImageURL    string  `json:"image_url"`
}

// AccessoryCard is the wire form of a selected accessory.
type AccessoryCard struct {
	AccessoryType string  `json:"accessory_type"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
	Stars         string  `json:"stars"`
	ImageURL      string  `json:"image_url"`
}

const starGlyph = "⭐"

// Stars renders a rating as a repeated-glyph string of length
// round(rating), clamped to the 0..5 glyph range.
func Stars(rating float64) string {
	r, err := stats.Round(rating, 0)
	if err != nil {
		return ""
	}
	n := int(r)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat(starGlyph, n)
}

// NewProductCard builds a recommendation card from a catalog row.
func NewProductCard(brandType string, p Product) ProductCard {
	return ProductCard{
		BrandType:   brandType,
		Title:       p.ProductTitle,
		Price:       float64(p.Price),
		Rating:      float64(p.Rating),
		ReviewCount: int(p.ReviewCount),
		Stars:       Stars(float64(p.Rating)),
		ImageURL:    p.ImageURL,
	}
}

// NewAccessoryCard builds an accessory card from an accessory row.
func NewAccessoryCard(accessoryType string, a Accessory) AccessoryCard {
	return AccessoryCard{
		AccessoryType: accessoryType,
		Title:         a.ProductTitle,
		Price:         float64(a.Price),
		Rating:        float64(a.Rating),
		ReviewCount:   int(a.ReviewCount),
		Stars:         Stars(float64(a.Rating)),
		ImageURL:      a.ImageURL,
	}
}
