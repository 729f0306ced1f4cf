package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hellbot-id/hellbot/internal/chat"
	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/domain"
)

const dateLayout = "2006-01-02"

// Notifier runs the recurring sweeps: disabling expired rentals, reminding
// owners ahead of expiry, and nudging long-expired groups. Sweeps fan out
// over independent recipients; one failed delivery is logged and skipped,
// never aborting the rest, and sends are paced to stay under the transport's
// rate limits.
type Notifier struct {
	settings  SettingsStore
	tracking  TrackingStore
	rental    *RentalService
	messenger chat.Messenger
	loc       *time.Location
	delay     time.Duration

	now func() time.Time
}

func NewNotifier(settings SettingsStore, tracking TrackingStore, rental *RentalService, messenger chat.Messenger, loc *time.Location, delay time.Duration) *Notifier {
	return &Notifier{
		settings:  settings,
		tracking:  tracking,
		rental:    rental,
		messenger: messenger,
		loc:       loc,
		delay:     delay,
		now:       time.Now,
	}
}

// SweepExpired flips off every rental whose time has elapsed and announces
// it once to the group and, for paid rentals, to the owner. The flip itself
// keeps this from firing twice: an expired group no longer has RentMode set.
func (n *Notifier) SweepExpired(ctx context.Context) {
	groups, err := n.settings.GetAll(ctx)
	if err != nil {
		slog.Error("expiry sweep: list groups", "error", err)
		return
	}

	now := n.now().In(n.loc)
	for _, st := range groups {
		if !st.RentMode || st.RentExpiry == nil || now.Before(*st.RentExpiry) {
			continue
		}

		if err := n.rental.Expire(ctx, st.GroupID); err != nil {
			slog.Error("expiry sweep: expire group", "group_id", st.GroupID, "error", err)
			continue
		}
		slog.Info("rental expired", "group_id", st.GroupID, "expired_at", st.RentExpiry)

		if err := n.messenger.SendToGroup(ctx, st.GroupID,
			"Masa sewa bot telah berakhir. Bot tidak lagi merespon perintah. Perpanjang dengan perintah sewa."); err != nil {
			slog.Error("expiry sweep: notify group", "group_id", st.GroupID, "error", err)
		}
		if st.RentOwner != nil && !st.RentOwner.IsTrial() {
			if err := n.messenger.SendToContact(ctx, st.RentOwner.ContactID, fmt.Sprintf(
				"Sewa bot untuk grup %s telah berakhir. Terima kasih sudah menyewa, ditunggu perpanjangannya!",
				st.GroupID)); err != nil {
				slog.Error("expiry sweep: notify owner",
					"group_id", st.GroupID, "contact_id", st.RentOwner.ContactID, "error", err)
			}
		}
		n.pause(ctx)
	}
}

// SweepRenewals sends the pre-expiry reminders to paying owners. The daily
// reminder fires on the 3 last days, anchored to the hour-of-day of the
// expiry so the hourly cadence produces one candidate per day; the final
// reminder fires inside the last 12 hours. Both are deduplicated per
// calendar day through the tracking store, so a restart cannot double-send.
func (n *Notifier) SweepRenewals(ctx context.Context) {
	groups, err := n.settings.GetAll(ctx)
	if err != nil {
		slog.Error("renewal sweep: list groups", "error", err)
		return
	}

	now := n.now().In(n.loc)
	today := now.Format(dateLayout)

	for _, st := range groups {
		if !st.RentActiveAt(now) || st.RentOwner == nil || st.RentOwner.IsTrial() {
			continue
		}

		expiry := st.RentExpiry.In(n.loc)
		remaining := expiry.Sub(now)
		daysLeft := int(math.Ceil(remaining.Hours() / 24))

		if remaining > 0 && remaining <= config.FinalReminderWindow {
			n.remind(ctx, st, domain.NotifyFinal, today, fmt.Sprintf(
				"Sewa bot grup %s berakhir dalam %d jam (%s). Segera perpanjang agar bot tidak berhenti.",
				st.GroupID, int(math.Ceil(remaining.Hours())), expiry.Format("02-01-2006 15:04")))
		}

		if daysLeft >= 1 && daysLeft <= config.RenewalReminderDays && now.Hour() == expiry.Hour() {
			n.remind(ctx, st, domain.NotifyRenewal, today, fmt.Sprintf(
				"Sewa bot grup %s tersisa %d hari, berakhir %s. Perpanjang dengan perintah sewa.",
				st.GroupID, daysLeft, expiry.Format("02-01-2006 15:04")))
		}
	}
}

// SweepStale nudges groups that expired between 1 and 30 days ago, then
// prunes old tracking entries. Groups dead longer than a month are left
// alone.
func (n *Notifier) SweepStale(ctx context.Context) {
	groups, err := n.settings.GetAll(ctx)
	if err != nil {
		slog.Error("stale sweep: list groups", "error", err)
		return
	}

	now := n.now().In(n.loc)
	today := now.Format(dateLayout)

	for _, st := range groups {
		if st.RentActiveAt(now) || st.RentExpiry == nil {
			continue
		}
		age := now.Sub(*st.RentExpiry)
		if age < config.StaleReminderMinAge || age > config.StaleReminderMaxAge {
			continue
		}

		key := domain.NotificationKey{GroupID: st.GroupID, ContactID: "group", Kind: domain.NotifyStale}
		first, err := n.tracking.MarkSent(ctx, key, today)
		if err != nil {
			slog.Error("stale sweep: mark sent", "group_id", st.GroupID, "error", err)
			continue
		}
		if !first {
			continue
		}
		if err := n.messenger.SendToGroup(ctx, st.GroupID,
			"Sewa bot grup ini sudah berakhir. Aktifkan lagi dengan perintah sewa."); err != nil {
			slog.Error("stale sweep: notify group", "group_id", st.GroupID, "error", err)
		}
		n.pause(ctx)
	}

	if err := n.tracking.Prune(ctx, now.Add(-config.NotificationRetention)); err != nil {
		slog.Error("stale sweep: prune tracking", "error", err)
	}
}

func (n *Notifier) remind(ctx context.Context, st domain.GroupSettings, kind domain.NotificationKind, today, text string) {
	key := domain.NotificationKey{
		GroupID:   st.GroupID,
		ContactID: st.RentOwner.ContactID,
		Kind:      kind,
	}
	first, err := n.tracking.MarkSent(ctx, key, today)
	if err != nil {
		slog.Error("renewal sweep: mark sent", "group_id", st.GroupID, "kind", kind, "error", err)
		return
	}
	if !first {
		return
	}
	if err := n.messenger.SendToContact(ctx, st.RentOwner.ContactID, text); err != nil {
		slog.Error("renewal sweep: notify owner",
			"group_id", st.GroupID, "contact_id", st.RentOwner.ContactID, "kind", kind, "error", err)
	}
	n.pause(ctx)
}

func (n *Notifier) pause(ctx context.Context) {
	if n.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(n.delay):
	}
}
