package aggregate

import (
	"testing"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

func res(url string) domain.Result {
	return domain.Result{Title: url, URL: url}
}

func TestFuseRRF_SharedURLWins(t *testing.T) {
	a := []domain.Result{res("https://a"), res("https://b"), res("https://c")}
	b := []domain.Result{res("https://b"), res("https://d")}

	fused := fuseRRF([][]domain.Result{a, b}, 10)

	// b appears in both rankings, so it must outrank every single-list hit.
	if fused[0].URL != "https://b" {
		t.Errorf("top result = %s, want https://b", fused[0].URL)
	}
	if len(fused) != 4 {
		t.Errorf("expected 4 distinct URLs, got %d", len(fused))
	}
}

func TestFuseRRF_PositionsRewritten(t *testing.T) {
	a := []domain.Result{
		{URL: "https://a", Position: 7},
		{URL: "https://b", Position: 9},
	}

	fused := fuseRRF([][]domain.Result{a}, 10)

	for i, r := range fused {
		if r.Position != i+1 {
			t.Errorf("result %d has position %d, want %d", i, r.Position, i+1)
		}
	}
}

func TestFuseRRF_TopKTruncation(t *testing.T) {
	a := []domain.Result{res("https://1"), res("https://2"), res("https://3")}
	b := []domain.Result{res("https://4"), res("https://5")}

	fused := fuseRRF([][]domain.Result{a, b}, 2)

	if len(fused) != 2 {
		t.Errorf("expected 2 results, got %d", len(fused))
	}
}

func TestFuseRRF_EqualScoresStableOrder(t *testing.T) {
	// Same rank in separate single-entry rankings: identical scores, so the
	// URL tiebreaker must keep the output deterministic.
	a := []domain.Result{res("https://zeta")}
	b := []domain.Result{res("https://alpha")}

	first := fuseRRF([][]domain.Result{a, b}, 10)
	second := fuseRRF([][]domain.Result{b, a}, 10)

	if first[0].URL != "https://alpha" || second[0].URL != "https://alpha" {
		t.Errorf("tiebreak not deterministic: %s vs %s", first[0].URL, second[0].URL)
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	if got := fuseRRF(nil, 10); len(got) != 0 {
		t.Errorf("expected empty fusion, got %d results", len(got))
	}
}
