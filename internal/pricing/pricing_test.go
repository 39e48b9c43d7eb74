// AngelaMos | 2026
// pricing_test.go

package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(string(tier))
		require.NoError(t, err)
		assert.Equal(t, tier, got)
	}

	_, err := ParseTier("enterprise")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, err = ParseTier("")
	assert.Error(t, err)
}

func TestTier_IsPaid(t *testing.T) {
	assert.False(t, TierFree.IsPaid())
	assert.True(t, TierPro.IsPaid())
	assert.True(t, TierCustom.IsPaid())
	assert.False(t, Tier("gold").IsPaid())
}

func TestGetPricingConfig_Table(t *testing.T) {
	free := GetPricingConfig(TierFree)
	assert.True(t, free.Price.IsZero())
	assert.Equal(t, 20, free.Features.JobsPerMonth.Value())
	assert.False(t, free.Features.JobsPerMonth.IsUnlimited())
	assert.False(t, free.Features.ChatAccess)
	assert.True(t, free.Features.ChatMessagesPerMonth.IsZero())
	assert.True(t, free.Features.CalendarAccess)
	assert.False(t, free.Features.ExportData)
	assert.False(t, free.Highlighted)

	pro := GetPricingConfig(TierPro)
	assert.Equal(t, "9.99", pro.Price.StringFixed(2))
	assert.True(t, pro.Features.JobsPerMonth.IsUnlimited())
	assert.Equal(t, 200, pro.Features.ChatMessagesPerMonth.Value())
	assert.True(t, pro.Features.ExportData)
	assert.False(t, pro.Features.PrioritySupport)
	assert.True(t, pro.Highlighted)

	custom := GetPricingConfig(TierCustom)
	assert.Equal(t, "29.99", custom.Price.StringFixed(2))
	assert.True(t, custom.Features.ChatMessagesPerMonth.IsUnlimited())
	assert.True(t, custom.Features.PrioritySupport)
	assert.True(t, custom.Features.CustomBranding)
}

func TestGetPricingConfig_UnknownFallsBackToFree(t *testing.T) {
	assert.Equal(t, GetPricingConfig(TierFree), GetPricingConfig(Tier("gold")))
}

func TestGetPricingConfig_ReturnsCopies(t *testing.T) {
	cfg := GetPricingConfig(TierFree)
	cfg.Features.JobsPerMonth = Unlimited()
	cfg.Name = "changed"

	again := GetPricingConfig(TierFree)
	assert.Equal(t, 20, again.Features.JobsPerMonth.Value())
	assert.Equal(t, "Free", again.Name)
}

func TestGetAllPricingTiers_Order(t *testing.T) {
	tiers := GetAllPricingTiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, TierFree, tiers[0].Tier)
	assert.Equal(t, TierPro, tiers[1].Tier)
	assert.Equal(t, TierCustom, tiers[2].Tier)
}

func TestHasFeatureAccess(t *testing.T) {
	tests := []struct {
		tier    Tier
		feature Feature
		want    bool
	}{
		{TierFree, FeatureJobsPerMonth, true},
		{TierFree, FeatureChatAccess, false},
		{TierFree, FeatureChatMessagesPerMonth, false},
		{TierFree, FeatureCalendarAccess, true},
		{TierFree, FeatureExportData, false},
		{TierPro, FeatureChatMessagesPerMonth, true},
		{TierPro, FeatureExportData, true},
		{TierPro, FeatureCustomBranding, false},
		{TierCustom, FeatureJobsPerMonth, true},
		{TierCustom, FeaturePrioritySupport, true},
		{TierCustom, Feature("teleport"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier)+"/"+string(tt.feature), func(t *testing.T) {
			assert.Equal(t, tt.want, HasFeatureAccess(tt.tier, tt.feature))
		})
	}
}

func TestGetResourceLimit(t *testing.T) {
	assert.Equal(t, Max(20), GetResourceLimit(TierFree, ResourceJobs))
	assert.Equal(t, Max(0), GetResourceLimit(TierFree, ResourceChat))
	assert.True(t, GetResourceLimit(TierPro, ResourceJobs).IsUnlimited())
	assert.Equal(t, Max(200), GetResourceLimit(TierPro, ResourceChat))
	assert.True(t, GetResourceLimit(TierCustom, ResourceChat).IsUnlimited())
}

func TestParseFeatureAndResource(t *testing.T) {
	f, err := ParseFeature("exportData")
	require.NoError(t, err)
	assert.Equal(t, FeatureExportData, f)
	assert.Equal(t, "Data export", f.DisplayName())

	_, err = ParseFeature("export")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	r, err := ParseResource("chat")
	require.NoError(t, err)
	assert.Equal(t, ResourceChat, r)

	_, err = ParseResource("emails")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestLimit(t *testing.T) {
	l := Max(20)
	assert.False(t, l.Reached(19))
	assert.True(t, l.Reached(20))
	assert.True(t, l.Allows(19, 1))
	assert.False(t, l.Allows(19, 2))
	assert.Equal(t, "20", l.String())

	u := Unlimited()
	assert.False(t, u.Reached(1_000_000))
	assert.True(t, u.Allows(1_000_000, 1_000))
	assert.False(t, u.IsZero())

	assert.Equal(t, 0, Max(-5).Value())
	assert.True(t, Limit{}.IsZero())
}

func TestLimit_JSON(t *testing.T) {
	data, err := json.Marshal(Features{
		JobsPerMonth:         Unlimited(),
		ChatMessagesPerMonth: Max(200),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"jobsPerMonth":"unlimited"`)
	assert.Contains(t, string(data), `"chatMessagesPerMonth":200`)

	var f Features
	require.NoError(t, json.Unmarshal(data, &f))
	assert.True(t, f.JobsPerMonth.IsUnlimited())
	assert.Equal(t, 200, f.ChatMessagesPerMonth.Value())

	var bad Limit
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &bad))
}

func TestHandler_ListTiers(t *testing.T) {
	r := chi.NewRouter()
	NewHandler().RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool         `json:"success"`
		Data    []TierConfig `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 3)
	assert.Equal(t, TierPro, body.Data[1].Tier)
	assert.True(t, body.Data[2].Features.JobsPerMonth.IsUnlimited())
}
