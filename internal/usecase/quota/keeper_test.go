package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

type mockReader struct {
	data  map[string]int64
	getFn func(ctx context.Context, key string) (int64, error)
}

func (m *mockReader) Get(ctx context.Context, key string) (int64, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return m.data[key], nil
}

func testPolicies() map[string]domain.QuotaPolicy {
	return map[string]domain.QuotaPolicy{
		"tavily":     {Limit: 1000, Reset: domain.ResetMonthly},
		"exa":        {Limit: 1000, Reset: domain.ResetLifetime},
		"perplexity": {Reset: domain.ResetPaid, CostPerQuery: 0.006},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestKey_Monthly(t *testing.T) {
	k := New(&mockReader{}, testPolicies()).
		WithClock(fixedClock(time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)))

	if got := k.Key("tavily"); got != "tavily:2025-03" {
		t.Errorf("got %q, want tavily:2025-03", got)
	}
}

func TestKey_MonthlyStableWithinMonth(t *testing.T) {
	k := New(&mockReader{}, testPolicies())

	start := k.WithClock(fixedClock(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))).Key("tavily")
	end := k.WithClock(fixedClock(time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC))).Key("tavily")
	if start != end {
		t.Errorf("key changed within one month: %q vs %q", start, end)
	}

	next := k.WithClock(fixedClock(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))).Key("tavily")
	if next == end {
		t.Errorf("key did not rotate across months: %q", next)
	}
}

func TestKey_MonthlyUsesUTC(t *testing.T) {
	// 23:30 on March 31 in UTC+3 is already April in local time, but the
	// key must follow UTC.
	loc := time.FixedZone("UTC+3", 3*3600)
	local := time.Date(2025, time.April, 1, 2, 30, 0, 0, loc) // 2025-03-31T23:30Z
	k := New(&mockReader{}, testPolicies()).WithClock(fixedClock(local))

	if got := k.Key("tavily"); got != "tavily:2025-03" {
		t.Errorf("got %q, want tavily:2025-03", got)
	}
}

func TestKey_LifetimeAndPaid(t *testing.T) {
	k := New(&mockReader{}, testPolicies())

	if got := k.Key("exa"); got != "exa:lifetime" {
		t.Errorf("got %q, want exa:lifetime", got)
	}
	if got := k.Key("perplexity"); got != "perplexity:paid" {
		t.Errorf("got %q, want perplexity:paid", got)
	}
	if got := PaidKey("tavily"); got != "tavily:paid" {
		t.Errorf("got %q, want tavily:paid", got)
	}
}

func TestHasQuota_Boundary(t *testing.T) {
	reader := &mockReader{data: map[string]int64{}}
	k := New(reader, testPolicies()).
		WithClock(fixedClock(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	reader.data["tavily:2025-03"] = 999 // limit-1
	has, err := k.HasQuota(ctx, "tavily")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("used=limit-1 must still have quota")
	}

	reader.data["tavily:2025-03"] = 1000 // at limit
	has, err = k.HasQuota(ctx, "tavily")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("used=limit must be exhausted")
	}
}

func TestHasQuota_PaidOnlyNeverFree(t *testing.T) {
	k := New(&mockReader{data: map[string]int64{}}, testPolicies())

	has, err := k.HasQuota(context.Background(), "perplexity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("paid-only provider must never report free quota")
	}
}

func TestHasQuota_UnknownProvider(t *testing.T) {
	k := New(&mockReader{data: map[string]int64{}}, testPolicies())

	has, err := k.HasQuota(context.Background(), "altavista")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Error("unknown provider must not have quota")
	}
}

func TestHasQuota_StoreErrorPropagates(t *testing.T) {
	reader := &mockReader{getFn: func(_ context.Context, _ string) (int64, error) {
		return 0, errors.New("connection refused")
	}}
	k := New(reader, testPolicies())

	if _, err := k.HasQuota(context.Background(), "tavily"); err == nil {
		t.Fatal("expected storage error to propagate")
	}
}
