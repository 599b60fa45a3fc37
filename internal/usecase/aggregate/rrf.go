package aggregate

import (
	"sort"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges per-provider rankings via Reciprocal Rank Fusion, keyed by
// URL. score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// When a URL appears in several rankings the first-seen result is kept.
func fuseRRF(rankings [][]domain.Result, topK int) []domain.Result {
	type scored struct {
		res   domain.Result
		score float64
	}

	merged := make(map[string]*scored)

	for _, ranking := range rankings {
		for rank, r := range ranking {
			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[r.URL]; ok {
				existing.score += s
			} else {
				merged[r.URL] = &scored{res: r, score: s}
			}
		}
	}

	fused := make([]*scored, 0, len(merged))
	for _, s := range merged {
		fused = append(fused, s)
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].res.URL < fused[j].res.URL // stable order for equal scores
	})

	if len(fused) > topK {
		fused = fused[:topK]
	}

	results := make([]domain.Result, 0, len(fused))
	for i, s := range fused {
		r := s.res
		r.Position = i + 1
		results = append(results, r)
	}
	return results
}
