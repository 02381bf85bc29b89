package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/domain"
)

func accessorySnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Version: 1,
		Products: []domain.Product{
			{Model: "MacBook Pro 14", Brand: "apple", Category: "laptops", Inch: "14.0"},
			{Model: "Galaxy Book 3", Brand: "samsung", Category: "laptops", Inch: "15.6"},
			{Model: "IdeaPad 5", Brand: "lenovo", Category: "laptops", Inch: "oops"},
			{Model: "iPhone 13", Brand: "apple", Category: "smartphones"},
			{Model: "Galaxy S21", Brand: "samsung", Category: "smartphones"},
		},
		LaptopAccessories: []domain.Accessory{
			{Category: "laptop bags", Brand: "generic", ProductTitle: "Urban Bag 14", Inch: "14.0", Rating: 4.2},
			{Category: "laptop bags", Brand: "generic", ProductTitle: "Urban Bag 15", Inch: "15.6", Rating: 4.3},
			{Category: "mouse", Brand: "logitech", ProductTitle: "Logitech MX Master 3", Rating: 4.8},
			{Category: "mouse", Brand: "apple", ProductTitle: "Apple Magic Mouse 2", Rating: 4.6},
		},
		MobileAccessories: []domain.Accessory{
			{Category: "screen protector", Model: " iPhone 13 ", ProductTitle: "Tempered Glass iPhone 13", Rating: 4.1},
			{Category: "phone cases", Model: "iPhone 13", ProductTitle: "Spigen Case iPhone 13", Rating: 4.5},
			{Category: "charger", ProductTitle: "Anker 20W Charger", Rating: 4.7, Price: 24.9},
			{Category: "charger", ProductTitle: "Apple 20W Charger", Rating: 4.6, Price: 19},
			{Category: "bluetooth headphone", ProductTitle: "Sony WH-1000XM4", Rating: 4.8},
		},
	}
}

// pinned always picks the row at the given offset (clamped).
func pinned(offset int) func(int) int {
	return func(n int) int {
		if offset >= n {
			return n - 1
		}
		return offset
	}
}

func TestSelectSmartphoneApple(t *testing.T) {
	e := NewEngineWithRand(pinned(0))
	cards := e.Select(accessorySnapshot(), "iphone 13", "smartphones", "apple")
	require.Len(t, cards, 4)

	assert.Equal(t, "Screen Protector", cards[0].AccessoryType)
	assert.Equal(t, "Tempered Glass iPhone 13", cards[0].Title)
	assert.Equal(t, "Phone Case", cards[1].AccessoryType)
	assert.Equal(t, "Charger", cards[2].AccessoryType)
	assert.Equal(t, "Anker 20W Charger", cards[2].Title)
	assert.Equal(t, "Bluetooth Headphone", cards[3].AccessoryType)
}

func TestSelectSmartphoneChargerIsApplOnly(t *testing.T) {
	e := NewEngineWithRand(pinned(0))
	cards := e.Select(accessorySnapshot(), "galaxy s21", "smartphones", "samsung")

	// No model-specific rows, no charger for non-apple brands: only
	// the bluetooth headphone survives.
	require.Len(t, cards, 1)
	assert.Equal(t, "Bluetooth Headphone", cards[0].AccessoryType)
	assert.Equal(t, "Sony WH-1000XM4", cards[0].Title)
}

func TestSelectSmartphoneRandomPickRespectsSource(t *testing.T) {
	snap := accessorySnapshot()

	first := NewEngineWithRand(pinned(0)).Select(snap, "iphone 13", "smartphones", "apple")
	second := NewEngineWithRand(pinned(1)).Select(snap, "iphone 13", "smartphones", "apple")

	assert.Equal(t, "Anker 20W Charger", first[2].Title)
	assert.Equal(t, "Apple 20W Charger", second[2].Title)
	// The accessory type label never depends on the draw.
	assert.Equal(t, "Charger", first[2].AccessoryType)
	assert.Equal(t, "Charger", second[2].AccessoryType)
}

func TestSelectLaptopAppleBagAndMagicMouse(t *testing.T) {
	e := NewEngineWithRand(pinned(0))
	cards := e.Select(accessorySnapshot(), "macbook pro 14", "laptops", "apple")
	require.Len(t, cards, 2)

	assert.Equal(t, `Laptop Bag (14.0" size)`, cards[0].AccessoryType)
	assert.Equal(t, "Urban Bag 14", cards[0].Title)
	assert.Equal(t, "Magic Mouse", cards[1].AccessoryType)
	assert.Equal(t, "Apple Magic Mouse 2", cards[1].Title)
}

func TestSelectLaptopSamsungSkipsMagicMouse(t *testing.T) {
	e := NewEngineWithRand(pinned(0))
	cards := e.Select(accessorySnapshot(), "galaxy book 3", "laptops", "samsung")
	require.Len(t, cards, 2)

	assert.Equal(t, `Laptop Bag (15.6" size)`, cards[0].AccessoryType)
	assert.Equal(t, "Mouse", cards[1].AccessoryType)
	assert.Equal(t, "Logitech MX Master 3", cards[1].Title)
}

func TestSelectLaptopOtherBrandAnyMouse(t *testing.T) {
	e := NewEngineWithRand(pinned(0))
	cards := e.Select(accessorySnapshot(), "ideapad 5", "laptops", "lenovo")

	// Non-numeric inch silently skips the bag rule.
	require.Len(t, cards, 1)
	assert.Equal(t, "Mouse", cards[0].AccessoryType)
	assert.Equal(t, "Logitech MX Master 3", cards[0].Title)
}

func TestSelectUnknownCategoryYieldsNothing(t *testing.T) {
	e := NewEngineWithRand(pinned(0))
	cards := e.Select(accessorySnapshot(), "whatever", "tablets", "apple")
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}
