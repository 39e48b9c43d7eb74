// AngelaMos | 2026
// config.go

package pricing

import (
	"github.com/shopspring/decimal"
)

type TierConfig struct {
	Tier          Tier            `json:"tier"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	BillingPeriod string          `json:"billingPeriod"`
	Features      Features        `json:"features"`
	Highlighted   bool            `json:"highlighted"`
}

type Features struct {
	JobsPerMonth         Limit `json:"jobsPerMonth"`
	ChatAccess           bool  `json:"chatAccess"`
	ChatMessagesPerMonth Limit `json:"chatMessagesPerMonth"`
	CalendarAccess       bool  `json:"calendarAccess"`
	ExportData           bool  `json:"exportData"`
	PrioritySupport      bool  `json:"prioritySupport"`
	EmailReminders       bool  `json:"emailReminders"`
	AdvancedAnalytics    bool  `json:"advancedAnalytics"`
	CustomBranding       bool  `json:"customBranding"`
}

const (
	currencyUSD   = "USD"
	billingPeriod = "month"
)

// GetPricingConfig returns a fresh copy of the tier's configuration.
func GetPricingConfig(tier Tier) TierConfig {
	switch tier {
	case TierPro:
		return proConfig()
	case TierCustom:
		return customConfig()
	case TierFree:
		return freeConfig()
	}
	return freeConfig()
}

func GetAllPricingTiers() []TierConfig {
	tiers := Tiers()
	configs := make([]TierConfig, 0, len(tiers))
	for _, t := range tiers {
		configs = append(configs, GetPricingConfig(t))
	}
	return configs
}

func GetResourceLimit(tier Tier, resource Resource) Limit {
	features := GetPricingConfig(tier).Features

	switch resource {
	case ResourceJobs:
		return features.JobsPerMonth
	case ResourceChat:
		return features.ChatMessagesPerMonth
	}
	return Max(0)
}

func freeConfig() TierConfig {
	return TierConfig{
		Tier:          TierFree,
		Name:          "Free",
		Description:   "Track a job search on your own.",
		Price:         decimal.Zero,
		Currency:      currencyUSD,
		BillingPeriod: billingPeriod,
		Features: Features{
			JobsPerMonth:         Max(20),
			ChatAccess:           false,
			ChatMessagesPerMonth: Max(0),
			CalendarAccess:       true,
		},
	}
}

func proConfig() TierConfig {
	return TierConfig{
		Tier:          TierPro,
		Name:          "Pro",
		Description:   "Unlimited tracking with the assistant and exports.",
		Price:         decimal.RequireFromString("9.99"),
		Currency:      currencyUSD,
		BillingPeriod: billingPeriod,
		Features: Features{
			JobsPerMonth:         Unlimited(),
			ChatAccess:           true,
			ChatMessagesPerMonth: Max(200),
			CalendarAccess:       true,
			ExportData:           true,
			EmailReminders:       true,
			AdvancedAnalytics:    true,
		},
		Highlighted: true,
	}
}

func customConfig() TierConfig {
	return TierConfig{
		Tier:          TierCustom,
		Name:          "Custom",
		Description:   "Everything unlimited, with priority support.",
		Price:         decimal.RequireFromString("29.99"),
		Currency:      currencyUSD,
		BillingPeriod: billingPeriod,
		Features: Features{
			JobsPerMonth:         Unlimited(),
			ChatAccess:           true,
			ChatMessagesPerMonth: Unlimited(),
			CalendarAccess:       true,
			ExportData:           true,
			PrioritySupport:      true,
			EmailReminders:       true,
			AdvancedAnalytics:    true,
			CustomBranding:       true,
		},
	}
}
