package recommend

import (
	"math"
	"regexp"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mobigenie/mobigenie/internal/catalog"
	"github.com/mobigenie/mobigenie/internal/domain"
)

// ErrNoMatch is returned when the best cosine similarity stays below
// the confidence threshold. Short near-identical model names produce
// false positives without it.
var ErrNoMatch = errors.New("no model match above confidence threshold")

// ConfidenceThreshold is the minimum cosine similarity for a fuzzy
// model match to be accepted.
const ConfidenceThreshold = 0.3

// tokenPattern splits normalized model strings into alphanumeric runs
// of two or more characters, single characters carry no signal.
var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// Matcher resolves free-text model queries against the catalog using
// a TF-IDF vector space over product model strings. The vector space
// is cached per catalog version and rebuilt lazily after a reload.
type Matcher struct {
	mu    sync.RWMutex
	index *modelIndex
}

type modelIndex struct {
	version uint64
	idf     map[string]float64
	docs    []map[string]float64
}

// NewMatcher creates a matcher. When a bus is given the cached index
// is dropped on every catalog reload announcement.
func NewMatcher(bus EventBus.Bus) *Matcher {
	m := &Matcher{}
	if bus != nil {
		if err := bus.Subscribe(catalog.TopicReloaded, m.invalidate); err != nil {
			zap.L().Warn("matcher: reload subscription failed", zap.Error(err))
		}
	}
	return m
}

func (m *Matcher) invalidate(version uint64) {
	m.mu.Lock()
	m.index = nil
	m.mu.Unlock()
	zap.L().Debug("matcher: index invalidated", zap.Uint64("catalog_version", version))
}

// Resolve returns the best-matching catalog row for a free-text model
// query together with its similarity score. Ties keep the first row
// in catalog order. Scores below ConfidenceThreshold yield ErrNoMatch.
func (m *Matcher) Resolve(snap *catalog.Snapshot, query string) (domain.Product, float64, error) {
	idx := m.indexFor(snap)

	qv := vectorize(tokenize(query), idx.idf)
	best, bestScore := -1, 0.0
	for i, dv := range idx.docs {
		if score := dot(qv, dv); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < ConfidenceThreshold {
		return domain.Product{}, bestScore, ErrNoMatch
	}
	return snap.Products[best], bestScore, nil
}

func (m *Matcher) indexFor(snap *catalog.Snapshot) *modelIndex {
	m.mu.RLock()
	idx := m.index
	m.mu.RUnlock()
	if idx != nil && idx.version == snap.Version {
		return idx
	}

	idx = buildIndex(snap)
	m.mu.Lock()
	m.index = idx
	m.mu.Unlock()
	return idx
}

// buildIndex computes smooth-IDF weights (ln((1+n)/(1+df))+1) and
// L2-normalized TF-IDF vectors for every model string, so cosine
// similarity reduces to a dot product.
func buildIndex(snap *catalog.Snapshot) *modelIndex {
	docTokens := make([][]string, len(snap.Products))
	df := make(map[string]int)
	for i, p := range snap.Products {
		toks := tokenize(p.Model)
		docTokens[i] = toks
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	n := len(snap.Products)
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	docs := make([]map[string]float64, len(docTokens))
	for i, toks := range docTokens {
		docs[i] = vectorize(toks, idf)
	}
	return &modelIndex{version: snap.Version, idf: idf, docs: docs}
}

func tokenize(s string) []string {
	return tokenPattern.FindAllString(domain.Normalize(s), -1)
}

// vectorize builds an L2-normalized term-frequency vector weighted by
// idf. Tokens outside the vocabulary are dropped.
func vectorize(tokens []string, idf map[string]float64) map[string]float64 {
	counts := make(map[string]int)
	for _, t := range tokens {
		if _, known := idf[t]; known {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	vec := make(map[string]float64, len(counts))
	var norm float64
	for t, c := range counts {
		w := float64(c) * idf[t]
		vec[t] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for t := range vec {
		vec[t] /= norm
	}
	return vec
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for t, w := range a {
		sum += w * b[t]
	}
	return sum
}
