package domain

// Known provider names. Registration still depends on credential presence.
const (
	ProviderTavily     = "tavily"
	ProviderBrave      = "brave"
	ProviderKagi       = "kagi"
	ProviderExa        = "exa"
	ProviderSerpAPI    = "serpapi"
	ProviderPerplexity = "perplexity"
)

// KnownProvider reports whether name belongs to the supported roster.
func KnownProvider(name string) bool {
	switch name {
	case ProviderTavily, ProviderBrave, ProviderKagi, ProviderExa, ProviderSerpAPI, ProviderPerplexity:
		return true
	}
	return false
}

// ResetType defines how a provider's free-tier allowance resets.
type ResetType string

const (
	// ResetMonthly resets each new UTC calendar month.
	ResetMonthly ResetType = "monthly"
	// ResetLifetime never resets for the credential's life.
	ResetLifetime ResetType = "lifetime"
	// ResetPaid marks a provider with no free tier; every call costs money.
	ResetPaid ResetType = "paid"
)

// QuotaPolicy describes a provider's free-tier allowance and overage cost.
type QuotaPolicy struct {
	Limit        int64
	Reset        ResetType
	CostPerQuery float64 // dollars, used for paid-tier cost estimation
}

// PaidOnly reports whether the provider has no free tier at all.
func (p QuotaPolicy) PaidOnly() bool { return p.Reset == ResetPaid }
