package stats

import (
	"fmt"
	"strings"
	"time"
)

// Render formats the report as the human-readable usage text shown to
// callers of the stats tool.
func (r Report) Render() string {
	var b strings.Builder
	b.WriteString("Search provider usage\n")
	b.WriteString("=====================\n")

	for _, p := range r.Providers {
		b.WriteString(fmt.Sprintf("\n%s (%s)\n", p.Provider, renderStatus(p)))
		if p.PaidOnly {
			b.WriteString(fmt.Sprintf("  paid queries: %d (est. $%.2f)\n", p.Used, p.EstimatedCost))
		} else {
			b.WriteString(fmt.Sprintf("  free tier: %d/%d used, %d remaining\n", p.Used, p.Limit, p.Remaining))
			if p.Overage > 0 {
				b.WriteString(fmt.Sprintf("  overage: %d paid queries\n", p.Overage))
			}
		}
		if p.Health == Down {
			b.WriteString(fmt.Sprintf("  circuit open until %s (%d consecutive failures)\n",
				p.CooldownUntil.UTC().Format(time.RFC3339), p.Failures))
		} else if p.Health == Degraded {
			b.WriteString(fmt.Sprintf("  %d recent failures\n", p.Failures))
		}
	}

	return b.String()
}

func renderStatus(p ProviderStats) string {
	if !p.Registered {
		return "not configured"
	}
	return string(p.Health)
}
