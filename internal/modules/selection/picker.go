package selection

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"adservice/internal/domain"
)

// globalRand draws from the math/rand/v2 top-level source, which is safe for concurrent use.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// candidatePool drops recently shown ads. When every eligible ad was shown recently the full
// eligible set is returned and fallback is true.
func candidatePool(eligible []domain.Ad, recent []int64) (pool []domain.Ad, fallback bool) {
	if len(recent) == 0 {
		return eligible, false
	}

	seen := make(map[int64]struct{}, len(recent))
	for _, id := range recent {
		seen[id] = struct{}{}
	}

	fresh := make([]domain.Ad, 0, len(eligible))
	for _, ad := range eligible {
		if _, ok := seen[ad.ID]; !ok {
			fresh = append(fresh, ad)
		}
	}
	if len(fresh) == 0 {
		return eligible, true
	}
	return fresh, false
}

// pickWeighted chooses one ad with probability weight/total. Ads are walked in ascending id
// order so a given random draw always maps to the same ad. With zero total weight the choice
// is uniform. pool must not be empty.
func pickWeighted(pool []domain.Ad, rnd Rand) domain.Ad {
	sorted := slices.Clone(pool)
	slices.SortFunc(sorted, func(a, b domain.Ad) int { return cmp.Compare(a.ID, b.ID) })

	total := 0
	for _, ad := range sorted {
		total += max(ad.Weight, 0)
	}
	if total == 0 {
		return sorted[rnd.IntN(len(sorted))]
	}

	r := rnd.Float64() * float64(total)
	cumulative := 0.0
	for _, ad := range sorted {
		if ad.Weight <= 0 {
			continue
		}
		cumulative += float64(ad.Weight)
		if r <= cumulative {
			return ad
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Weight > 0 {
			return sorted[i]
		}
	}
	return sorted[len(sorted)-1]
}
