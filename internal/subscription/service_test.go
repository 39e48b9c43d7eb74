// AngelaMos | 2026
// service_test.go

package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
)

const testUser = "8a3f0c4e-6b1d-4c8e-9a57-2f1e0b6d9c31"

func TestGetSubscriptionWithUsage_ProvisionsFreeOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.GetSubscriptionWithUsage(ctx, testUser)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	overview, err := f.service.GetSubscriptionWithUsage(ctx, testUser)
	require.NoError(t, err)

	assert.Equal(t, 1, f.subs.inserts)
	assert.Equal(t, pricing.TierFree, overview.Tier)
	assert.Equal(t, pricing.TierFree, overview.Subscription.Tier)
	assert.Equal(t, StatusActive, overview.Subscription.Status)
	assert.Nil(t, overview.Subscription.EndDate)
	assert.Equal(t, "2026-03", overview.Usage.CurrentMonth)
	assert.Equal(t, pricing.GetPricingConfig(pricing.TierFree), overview.Config)
}

func TestCanCreateJob_FreeQuota(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for current := 0; current <= 21; current++ {
		f.setUsage(testUser, current, 0)

		result, err := f.service.CanCreateJob(ctx, testUser)
		require.NoError(t, err)

		assert.Equal(t, current < 20, result.Allowed, "usage %d", current)
		assert.Equal(t, pricing.TierFree, result.Tier)
		require.NotNil(t, result.CurrentUsage)
		assert.Equal(t, current, *result.CurrentUsage)
		require.NotNil(t, result.Limit)
		assert.Equal(t, 20, result.Limit.Value())

		if result.Allowed {
			assert.Empty(t, result.Reason)
		} else {
			assert.Equal(t,
				"You've reached your monthly limit of 20 jobs. Upgrade to Pro for unlimited jobs.",
				result.Reason)
		}
	}
}

func TestCanCreateJob_TwentyFirstJobDenied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for range 20 {
		result, err := f.service.CanCreateJob(ctx, testUser)
		require.NoError(t, err)
		require.True(t, result.Allowed)
		_, err = f.service.RecordJobCreation(ctx, testUser, 1)
		require.NoError(t, err)
	}

	result, err := f.service.CanCreateJob(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 20, *result.CurrentUsage)
	assert.Equal(t, 20, result.Limit.Value())
	assert.Contains(t, result.Reason, "20 jobs")
}

func TestCanCreateJob_UnlimitedBypass(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{})
	require.NoError(t, err)
	f.setUsage(testUser, 10_000, 0)

	result, err := f.service.CanCreateJob(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.True(t, result.Limit.IsUnlimited())
	assert.Equal(t, pricing.TierPro, result.Tier)
}

func TestChatGatingPrecedence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	access, err := f.service.CanAccessChat(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, access.Allowed)

	send, err := f.service.CanSendChatMessage(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, send.Allowed)
	assert.Equal(t, access.Reason, send.Reason)
	assert.Nil(t, send.CurrentUsage)

	consumed, err := f.service.ConsumeChatMessage(ctx, testUser, 1)
	require.NoError(t, err)
	assert.Equal(t, access.Reason, consumed.Reason)
}

func TestCanSendChatMessage_ProAtLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{})
	require.NoError(t, err)
	f.setUsage(testUser, 0, 200)

	result, err := f.service.CanSendChatMessage(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 200, *result.CurrentUsage)
	assert.Equal(t, 200, result.Limit.Value())
	assert.Equal(t, pricing.TierPro, result.Tier)
	assert.Equal(t,
		"You've reached your monthly limit of 200 chat messages. Upgrade to Custom for unlimited messages.",
		result.Reason)
}

func TestExpiryTransition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{DurationMonths: 1})
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 1, 1)

	active, err := f.store.GetActiveSubscription(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, active)

	stored, err := f.store.GetSubscription(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stored.Status)

	tier, err := f.service.GetUserTier(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierFree, tier)
}

func TestCancelSubscription_KeepsTier(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{})
	require.NoError(t, err)

	cancelled, err := f.service.CancelSubscription(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, pricing.TierPro, cancelled.Tier)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, f.now, *cancelled.CancelledAt)

	tier, err := f.service.GetUserTier(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierFree, tier)
}

func TestCancelSubscription_NoneReturnsNil(t *testing.T) {
	f := newFixture()

	sub, err := f.service.CancelSubscription(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestCancelToFree(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CancelToFree(ctx, testUser)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierCustom, Options{DurationMonths: 12})
	require.NoError(t, err)

	cancelled, err := f.service.CancelToFree(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierCustom, cancelled.Tier)

	current, err := f.store.GetActiveSubscription(ctx, testUser)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, pricing.TierFree, current.Tier)
	assert.Nil(t, current.EndDate)
	assert.Nil(t, current.CancelledAt)
	assert.Equal(t, PaymentNone, current.PaymentMethod)
}

func TestCreateOrUpdateSubscription_AdminProThreeMonths(t *testing.T) {
	f := newFixture()

	sub, err := f.service.CreateOrUpdateSubscription(context.Background(), testUser, pricing.TierPro, Options{
		DurationMonths: 3,
		CreatedBy:      "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, pricing.TierPro, sub.Tier)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, PaymentManual, sub.PaymentMethod)
	require.NotNil(t, sub.EndDate)
	assert.WithinDuration(t, f.now.AddDate(0, 3, 0), *sub.EndDate, time.Second)
	require.NotNil(t, sub.CreatedBy)
	assert.Equal(t, "admin-1", *sub.CreatedBy)
}

func TestCreateOrUpdateSubscription_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.Tier("gold"), Options{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{DurationMonths: 37})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	free, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierFree, Options{DurationMonths: 99})
	require.NoError(t, err)
	assert.Nil(t, free.EndDate)
	assert.Equal(t, PaymentNone, free.PaymentMethod)

	custom, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierCustom, Options{})
	require.NoError(t, err)
	require.NotNil(t, custom.EndDate)
	assert.Equal(t, PaymentManual, custom.PaymentMethod)
}

func TestCreateOrUpdateSubscription_KeepsSingleRow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.store.CreateFreeSubscription(ctx, testUser)
	require.NoError(t, err)

	upgraded, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, upgraded.ID)
	assert.Equal(t, 1, f.subs.inserts)
}

func TestConsumeJobCreation_ConcurrentNeverExceedsLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.service.ConsumeJobCreation(ctx, testUser)
			if err != nil || !result.Allowed {
				return
			}
			mu.Lock()
			allowed++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed)

	stats, err := f.service.GetUsage(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.JobsCreated)
}

func TestReleaseJobCreation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.setUsage(testUser, 19, 0)

	taken, err := f.service.ConsumeJobCreation(ctx, testUser)
	require.NoError(t, err)
	require.True(t, taken.Allowed)
	assert.Equal(t, "2026-03", taken.Period)

	denied, err := f.service.ConsumeJobCreation(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	require.NoError(t, f.service.ReleaseJobCreation(ctx, testUser, taken.Period))

	allowed, err := f.service.ConsumeJobCreation(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, allowed.Allowed)
	assert.Equal(t, 19, *allowed.CurrentUsage)
}

func TestReleaseJobCreation_AfterMonthChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	march, err := f.service.ConsumeJobCreation(ctx, testUser)
	require.NoError(t, err)
	require.True(t, march.Allowed)

	f.now = time.Date(2026, time.April, 1, 0, 0, 30, 0, time.UTC)

	april, err := f.service.ConsumeJobCreation(ctx, testUser)
	require.NoError(t, err)
	require.True(t, april.Allowed)

	require.NoError(t, f.service.ReleaseJobCreation(ctx, testUser, march.Period))

	stats, err := f.service.GetUsage(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "2026-04", stats.CurrentMonth)
	assert.Equal(t, 1, stats.JobsCreated)
}

func TestConsumeChatMessage_CountMustFit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{})
	require.NoError(t, err)
	f.setUsage(testUser, 0, 198)

	denied, err := f.service.ConsumeChatMessage(ctx, testUser, 3)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 198, *denied.CurrentUsage)

	allowed, err := f.service.ConsumeChatMessage(ctx, testUser, 2)
	require.NoError(t, err)
	assert.True(t, allowed.Allowed)

	stats, err := f.service.GetUsage(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 200, stats.ChatMessages)
}

func TestCanUseFeature(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.service.CanUseFeature(ctx, testUser, pricing.FeatureExportData)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, "Data export is not available on your plan. Upgrade to unlock it.", result.Reason)

	result, err = f.service.CanUseFeature(ctx, testUser, pricing.FeatureCalendarAccess)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Reason)

	_, err = f.service.CreateOrUpdateSubscription(ctx, testUser, pricing.TierPro, Options{})
	require.NoError(t, err)

	result, err = f.service.CanUseFeature(ctx, testUser, pricing.FeatureExportData)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestCheck_Dispatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.service.Check(ctx, testUser, ActionCreateJob)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = f.service.Check(ctx, testUser, ActionAccessChat)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	_, err = f.service.Check(ctx, testUser, Action("fly"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = ParseAction("send_chat_message")
	assert.NoError(t, err)
}
