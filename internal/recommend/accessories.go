package recommend

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/domain"
)

// Accessory sub-type keys in the accessory tables.
const (
	subScreenProtector    = "screen protector"
	subPhoneCases         = "phone cases"
	subCharger            = "charger"
	subBluetoothHeadphone = "bluetooth headphone"
	subLaptopBags         = "laptop bags"
	subMouse              = "mouse"
)

// Engine selects complementary accessories for a resolved product by
// a fixed (category, brand)-conditional rule table. Random picks go
// through randInt so tests can pin them.
type Engine struct {
	randInt func(n int) int
}

// NewEngine returns an engine drawing random picks from math/rand.
func NewEngine() *Engine {
	return &Engine{randInt: rand.Intn}
}

// NewEngineWithRand returns an engine with a pinned random source.
func NewEngineWithRand(randInt func(n int) int) *Engine {
	return &Engine{randInt: randInt}
}

// Select applies the rule table for the given model query, category
// and brand. Every step is independently skippable: a rule with no
// matching rows contributes nothing and never fails the request.
func (e *Engine) Select(snap *catalog.Snapshot, modelQuery, category, brand string) []domain.AccessoryCard {
	cards := make([]domain.AccessoryCard, 0, 4)
	switch domain.Normalize(category) {
	case domain.CategorySmartphones:
		cards = e.selectMobile(snap, modelQuery, brand, cards)
	case domain.CategoryLaptops:
		cards = e.selectLaptop(snap, modelQuery, brand, cards)
	}
	return cards
}

func (e *Engine) selectMobile(snap *catalog.Snapshot, modelQuery, brand string, cards []domain.AccessoryCard) []domain.AccessoryCard {
	rows := snap.MobileAccessories
	key := domain.Normalize(modelQuery)

	if a, ok := first(rows, func(a domain.Accessory) bool {
		return domain.Normalize(a.Category) == subScreenProtector && domain.Normalize(a.Model) == key
	}); ok {
		cards = append(cards, domain.NewAccessoryCard("Screen Protector", a))
	}

	if a, ok := first(rows, func(a domain.Accessory) bool {
		return domain.Normalize(a.Category) == subPhoneCases && domain.Normalize(a.Model) == key
	}); ok {
		cards = append(cards, domain.NewAccessoryCard("Phone Case", a))
	}

	if domain.Normalize(brand) == "apple" {
		if a, ok := e.pick(filter(rows, bySub(subCharger))); ok {
			cards = append(cards, domain.NewAccessoryCard("Charger", a))
		}
	}

	if a, ok := e.pick(filter(rows, bySub(subBluetoothHeadphone))); ok {
		cards = append(cards, domain.NewAccessoryCard("Bluetooth Headphone", a))
	}
	return cards
}

func (e *Engine) selectLaptop(snap *catalog.Snapshot, modelQuery, brand string, cards []domain.AccessoryCard) []domain.AccessoryCard {
	rows := snap.LaptopAccessories

	if inch, ok := snap.InchForModel(modelQuery); ok {
		if a, found := first(rows, func(a domain.Accessory) bool {
			if domain.Normalize(a.Category) != subLaptopBags {
				return false
			}
			bagInch, err := strconv.ParseFloat(domain.Normalize(a.Inch), 64)
			return err == nil && bagInch == inch
		}); found {
			label := fmt.Sprintf("Laptop Bag (%.1f\" size)", inch)
			cards = append(cards, domain.NewAccessoryCard(label, a))
		}
	}

	switch domain.Normalize(brand) {
	case "apple":
		if a, ok := first(rows, func(a domain.Accessory) bool {
			return domain.Normalize(a.Category) == subMouse &&
				strings.Contains(domain.Normalize(a.ProductTitle), "magic mouse")
		}); ok {
			cards = append(cards, domain.NewAccessoryCard("Magic Mouse", a))
		}
	case "samsung":
		if a, ok := first(rows, func(a domain.Accessory) bool {
			return domain.Normalize(a.Category) == subMouse &&
				!strings.Contains(domain.Normalize(a.ProductTitle), "magic mouse")
		}); ok {
			cards = append(cards, domain.NewAccessoryCard("Mouse", a))
		}
	default:
		if a, ok := first(rows, bySub(subMouse)); ok {
			cards = append(cards, domain.NewAccessoryCard("Mouse", a))
		}
	}
	return cards
}

// pick selects one row uniformly at random, drawn independently per
// call.
func (e *Engine) pick(rows []domain.Accessory) (domain.Accessory, bool) {
	if len(rows) == 0 {
		return domain.Accessory{}, false
	}
	return rows[e.randInt(len(rows))], true
}

func bySub(sub string) func(domain.Accessory) bool {
	return func(a domain.Accessory) bool {
		return domain.Normalize(a.Category) == sub
	}
}

func first(rows []domain.Accessory, pred func(domain.Accessory) bool) (domain.Accessory, bool) {
	for _, a := range rows {
		if pred(a) {
			return a, true
		}
	}
	return domain.Accessory{}, false
}

func filter(rows []domain.Accessory, pred func(domain.Accessory) bool) []domain.Accessory {
	var out []domain.Accessory
	for _, a := range rows {
		if pred(a) {
			out = append(out, a)
		}
	}
	return out
}
