package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellbot-id/hellbot/internal/domain"
)

type webhookFixture struct {
	svc       *WebhookService
	rental    *RentalService
	settings  *memSettings
	orders    *memOrders
	messenger *fakeMessenger
}

func newWebhookFixture(t *testing.T, at time.Time) *webhookFixture {
	t.Helper()
	settings := newMemSettings()
	orders := newMemOrders()
	events := newMemEvents()
	messenger := newFakeMessenger()
	rental := NewRentalService(settings, wib, 3)
	rental.now = func() time.Time { return at }
	svc := NewWebhookService(rental, orders, events, DefaultPriceTable(), messenger, wib)
	return &webhookFixture{svc: svc, rental: rental, settings: settings, orders: orders, messenger: messenger}
}

func paidNotification(orderID string, amount int64, meta *domain.PaymentMetadata) *domain.PaymentNotification {
	return &domain.PaymentNotification{
		ID:         "inv-1",
		ExternalID: orderID,
		Status:     domain.PaymentStatusPaid,
		Amount:     decimal.NewFromInt(amount),
		Metadata:   meta,
	}
}

func TestProcess_PaidActivatesAndNotifies(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)

	meta := &domain.PaymentMetadata{
		GroupID:     "g1@g.us",
		Duration:    7,
		OwnerName:   "Budi",
		OwnerNumber: "628111",
	}
	require.NoError(t, f.svc.Process(context.Background(), paidNotification("RENT_g1_1", 10000, meta)))

	st, err := f.settings.Get(context.Background(), "g1@g.us")
	require.NoError(t, err)
	assert.True(t, st.RentActiveAt(now))
	require.NotNil(t, st.RentOwner)
	assert.Equal(t, "628111@s.whatsapp.net", st.RentOwner.ContactID)

	require.Len(t, f.messenger.groupSends(), 1)
	require.Len(t, f.messenger.contactSends(), 1)
	assert.Equal(t, "628111@s.whatsapp.net", f.messenger.contactSends()[0].To)
}

func TestProcess_ReplayDoesNotDoubleExtend(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)

	meta := &domain.PaymentMetadata{GroupID: "g1@g.us", Duration: 7, OwnerNumber: "628111"}
	n := paidNotification("RENT_g1_1", 10000, meta)

	require.NoError(t, f.svc.Process(context.Background(), n))
	st1, _ := f.settings.Get(context.Background(), "g1@g.us")
	expiry1 := *st1.RentExpiry

	// Provider retries the identical delivery.
	require.NoError(t, f.svc.Process(context.Background(), n))
	st2, _ := f.settings.Get(context.Background(), "g1@g.us")

	assert.True(t, st2.RentExpiry.Equal(expiry1), "replay extended expiry from %s to %s", expiry1, st2.RentExpiry)
	assert.Len(t, f.messenger.groupSends(), 1, "replay re-sent confirmation")
}

func TestProcess_FallsBackToStoredOrder(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)

	require.NoError(t, f.orders.Create(context.Background(), &domain.PaymentOrder{
		OrderID:      "RENT_120363_1750000000",
		GroupID:      "120363@g.us",
		GroupName:    "Guild Hell",
		Owner:        domain.Owner{Name: "Sari", ContactID: "628222@s.whatsapp.net"},
		DurationDays: 30,
		Amount:       decimal.NewFromInt(35000),
	}))

	// Webhook without metadata.
	require.NoError(t, f.svc.Process(context.Background(), paidNotification("RENT_120363_1750000000", 35000, nil)))

	st, err := f.settings.Get(context.Background(), "120363@g.us")
	require.NoError(t, err)
	assert.True(t, st.RentActiveAt(now))
	assert.Equal(t, 30, st.RentDurationDays)
	require.NotNil(t, st.RentOwner)
	assert.Equal(t, "Sari", st.RentOwner.Name)
}

func TestProcess_FallsBackToOrderIDConvention(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)

	// No metadata, no stored order: group comes from the id convention and
	// the duration from the price table.
	require.NoError(t, f.svc.Process(context.Background(), paidNotification("RENT_120363555_1750000000", 35000, nil)))

	st, err := f.settings.Get(context.Background(), "120363555@g.us")
	require.NoError(t, err)
	assert.True(t, st.RentActiveAt(now))
	assert.Equal(t, 30, st.RentDurationDays)

	// Group gets its confirmation; there is no owner to message.
	assert.Len(t, f.messenger.groupSends(), 1)
	assert.Empty(t, f.messenger.contactSends())
}

func TestProcess_UnresolvableIsDroppedNotFailed(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)

	// Foreign order id, no metadata: drop, ack, no state change.
	require.NoError(t, f.svc.Process(context.Background(), paidNotification("TOPUP_xyz", 35000, nil)))

	all, err := f.settings.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.messenger.groupSends())
}

func TestProcess_StoreFailureSurfacesForRetry(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)
	f.orders.readErr = errors.New("connection refused")

	// The order lookup failing is not the same as the order not existing:
	// the provider must get a non-2xx and retry once the store is back.
	n := paidNotification("RENT_120363555_1750000000", 35000, nil)
	err := f.svc.Process(context.Background(), n)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")

	all, err := f.settings.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	// The retry after recovery lands normally.
	f.orders.readErr = nil
	require.NoError(t, f.svc.Process(context.Background(), n))
	st, err := f.settings.Get(context.Background(), "120363555@g.us")
	require.NoError(t, err)
	assert.True(t, st.RentActiveAt(now))
}

func TestProcess_ExpiredAndPendingTouchNoState(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, wib)
	f := newWebhookFixture(t, now)

	meta := &domain.PaymentMetadata{GroupID: "g1@g.us", Duration: 7, OwnerNumber: "628111"}

	for _, status := range []domain.PaymentStatus{domain.PaymentStatusExpired, domain.PaymentStatusPending} {
		n := paidNotification("RENT_g1_9", 10000, meta)
		n.Status = status
		require.NoError(t, f.svc.Process(context.Background(), n))
	}

	st, err := f.settings.Get(context.Background(), "g1@g.us")
	require.NoError(t, err)
	assert.False(t, st.RentMode)
	// Owner was told twice (failure and pending), the group never.
	assert.Len(t, f.messenger.contactSends(), 2)
	assert.Empty(t, f.messenger.groupSends())
}
