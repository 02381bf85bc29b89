package catalog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mobigenie/mobigenie/internal/domain"
)

// TopicReloaded is published on the event bus after every successful
// catalog (re)load. Subscribers receive the new snapshot version.
const TopicReloaded = "catalog:reloaded"

// Sources are the three tabular files the store reads at startup.
type Sources struct {
	MainPath   string
	LaptopPath string
	MobilePath string
}

// DataLoadError is fatal at startup: a catalog source is missing,
// malformed, or violates the row invariants.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("catalog load failed for %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Snapshot is one immutable load of all three tables. Readers grab a
// snapshot once and operate on it without locking; the store never
// mutates a published snapshot.
type Snapshot struct {
	Version           uint64
	Products          []domain.Product
	LaptopAccessories []domain.Accessory
	MobileAccessories []domain.Accessory
}

// Store owns the catalog tables. All query primitives read the
// current snapshot; Reload swaps in a fresh one and announces it on
// the event bus.
type Store struct {
	sources Sources
	bus     EventBus.Bus
	version atomic.Uint64
	current atomic.Pointer[Snapshot]
}

// Load reads all three sources and returns a ready store. Any
// missing or malformed source aborts with a *DataLoadError.
func Load(sources Sources, bus EventBus.Bus) (*Store, error) {
	s := &Store{sources: sources, bus: bus}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads every source and atomically swaps the snapshot.
// On failure the previous snapshot stays in place.
func (s *Store) Reload() error {
	products, err := loadProducts(s.sources.MainPath)
	if err != nil {
		return err
	}
	laptop, err := loadAccessories(s.sources.LaptopPath)
	if err != nil {
		return err
	}
	mobile, err := loadAccessories(s.sources.MobilePath)
	if err != nil {
		return err
	}

	snap := &Snapshot{
		Version:           s.version.Add(1),
		Products:          products,
		LaptopAccessories: laptop,
		MobileAccessories: mobile,
	}
	s.current.Store(snap)

	zap.L().Info("catalog loaded",
		zap.Uint64("version", snap.Version),
		zap.Int("products", len(products)),
		zap.Int("laptop_accessories", len(laptop)),
		zap.Int("mobile_accessories", len(mobile)),
	)
	if s.bus != nil {
		s.bus.Publish(TopicReloaded, snap.Version)
	}
	return nil
}

// Snapshot returns the current immutable catalog snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Version returns the version of the current snapshot.
func (s *Store) Version() uint64 {
	return s.Snapshot().Version
}

func loadProducts(path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	defer f.Close()

	var rows []domain.Product
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, &DataLoadError{Source: path, Err: errors.Wrap(err, "parse csv")}
	}
	if len(rows) == 0 {
		return nil, &DataLoadError{Source: path, Err: errors.New("no rows")}
	}
	for i, p := range rows {
		if p.Model == "" || p.Brand == "" || p.Category == "" {
			return nil, &DataLoadError{
				Source: path,
				Err:    errors.Errorf("row %d: model, brand and category are required", i+1),
			}
		}
	}
	return rows, nil
}

func loadAccessories(path string) ([]domain.Accessory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	defer f.Close()

	var rows []domain.Accessory
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, &DataLoadError{Source: path, Err: errors.Wrap(err, "parse csv")}
	}
	if len(rows) == 0 {
		return nil, &DataLoadError{Source: path, Err: errors.New("no rows")}
	}
	for i, a := range rows {
		if a.Category == "" {
			return nil, &DataLoadError{
				Source: path,
				Err:    errors.Errorf("row %d: category is required", i+1),
			}
		}
	}
	return rows, nil
}

// FilterByBrandCategory returns main-catalog rows matching both brand
// and category, case-insensitive. Empty slice when nothing matches.
func (s *Store) FilterByBrandCategory(brand, category string) []domain.Product {
	var out []domain.Product
	for _, p := range s.Snapshot().Products {
		if domain.KeyEqual(p.Brand, brand) && domain.KeyEqual(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// TopByRating returns the n highest-rated products, descending. The
// sort is stable: equal ratings keep their original row order.
func TopByRating(products []domain.Product, n int) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// AccessoriesForBrand selects the mobile or laptop accessory table by
// top-level category and filters it by brand, case-insensitive.
func (s *Store) AccessoriesForBrand(category, brand string) []domain.Accessory {
	snap := s.Snapshot()
	table := snap.MobileAccessories
	if domain.Normalize(category) == domain.CategoryLaptops {
		table = snap.LaptopAccessories
	}
	var out []domain.Accessory
	for _, a := range table {
		if domain.KeyEqual(a.Brand, brand) {
			out = append(out, a)
		}
	}
	return out
}

// InchForModel looks up a product's screen size by exact normalized
// model match. The second return is false when the model is unknown
// or its inch value is absent or non-numeric.
func (s *Snapshot) InchForModel(model string) (float64, bool) {
	key := domain.Normalize(model)
	for _, p := range s.Products {
		if domain.Normalize(p.Model) == key {
			inch, err := strconv.ParseFloat(domain.Normalize(p.Inch), 64)
			if err != nil {
				return 0, false
			}
			return inch, true
		}
	}
	return 0, false
}

// Models returns the distinct model names of one category in row
// order, for the greeting endpoint.
func (s *Snapshot) Models(category string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.Products {
		if !domain.KeyEqual(p.Category, category) || p.Model == "" {
			continue
		}
		if _, ok := seen[p.Model]; ok {
			continue
		}
		seen[p.Model] = struct{}{}
		out = append(out, p.Model)
	}
	return out
}
