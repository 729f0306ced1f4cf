package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/domain"
)

const (
	testOwnerJID = "628999@s.whatsapp.net"
	testGroup    = "g1@g.us"
	adminJID     = "628100@s.whatsapp.net"
	memberJID    = "628200@s.whatsapp.net"
)

func newTestGate(t *testing.T) (*PermissionGate, *memSettings, *RentalService) {
	t.Helper()
	settings := newMemSettings()
	admins := &fakeAdmins{admins: map[string]bool{testGroup + "|" + adminJID: true}}
	cfg := &config.Config{OwnerJID: testOwnerJID}
	gate := NewPermissionGate(settings, admins, cfg)

	rental := NewRentalService(settings, wib, 3)
	rental.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, wib) }
	return gate, settings, rental
}

func enableBot(t *testing.T, rental *RentalService) {
	t.Helper()
	_, err := rental.Activate(context.Background(), testGroup, 7,
		domain.Owner{Name: "Budi", ContactID: adminJID}, decimal.NewFromInt(10000), "o1")
	require.NoError(t, err)
}

func TestCanExecute_AdminOnlyOverride(t *testing.T) {
	gate, _, rental := newTestGate(t)
	ctx := context.Background()
	enableBot(t, rental)
	require.NoError(t, rental.SetCommandPermission(ctx, testGroup, "hellnotif", domain.PermissionAdmin))

	allowed, err := gate.CanExecute(ctx, memberJID, testGroup, "hellnotif")
	require.NoError(t, err)
	assert.False(t, allowed, "plain member must not run admin-only commands")

	allowed, err = gate.CanExecute(ctx, adminJID, testGroup, "hellnotif")
	require.NoError(t, err)
	assert.True(t, allowed, "group admin runs admin-only commands")

	allowed, err = gate.CanExecute(ctx, testOwnerJID, testGroup, "hellnotif")
	require.NoError(t, err)
	assert.True(t, allowed, "bot owner overrides everything")
}

func TestCanExecute_DefaultsToAllMembers(t *testing.T) {
	gate, _, rental := newTestGate(t)
	enableBot(t, rental)

	allowed, err := gate.CanExecute(context.Background(), memberJID, testGroup, "rotasi")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCanExecute_InactiveBotAllowsOnlyLifecycle(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	// Fresh group: bot off by default.
	allowed, err := gate.CanExecute(ctx, memberJID, testGroup, "rotasi")
	require.NoError(t, err)
	assert.False(t, allowed)

	for _, cmd := range config.LifecycleCommands {
		allowed, err := gate.CanExecute(ctx, memberJID, testGroup, cmd)
		require.NoError(t, err)
		assert.True(t, allowed, "lifecycle command %q must stay reachable", cmd)
	}
}

func TestCanExecute_OwnerBypassesInactiveBot(t *testing.T) {
	gate, _, _ := newTestGate(t)

	allowed, err := gate.CanExecute(context.Background(), testOwnerJID, testGroup, "rotasi")
	require.NoError(t, err)
	assert.True(t, allowed)
}
