package recommend

import (
	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/domain"
)

// Per-partition cap on similar products.
const maxPerBrandGroup = 2

// Similar holds price-band neighbours of a resolved product,
// partitioned by brand. Same-brand entries render first.
type Similar struct {
	SameBrand  []domain.Product
	OtherBrand []domain.Product
}

// Recommend finds same-category products priced within the inclusive
// band [0.8p, 1.2p] of the given product, in catalog order, capped at
// two per partition. The source product itself is not excluded and
// may reappear in its own same-brand list when it falls in the band.
func Recommend(p domain.Product, snap *catalog.Snapshot) Similar {
	lo := float64(p.Price) * 0.8
	hi := float64(p.Price) * 1.2

	var sim Similar
	for _, c := range snap.Products {
		if !domain.KeyEqual(c.Category, p.Category) {
			continue
		}
		price := float64(c.Price)
		if price < lo || price > hi {
			continue
		}
		if domain.KeyEqual(c.Brand, p.Brand) {
			if len(sim.SameBrand) < maxPerBrandGroup {
				sim.SameBrand = append(sim.SameBrand, c)
			}
		} else if len(sim.OtherBrand) < maxPerBrandGroup {
			sim.OtherBrand = append(sim.OtherBrand, c)
		}
		if len(sim.SameBrand) == maxPerBrandGroup && len(sim.OtherBrand) == maxPerBrandGroup {
			break
		}
	}
	return sim
}
