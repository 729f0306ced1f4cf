package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hellbot-id/hellbot/internal/chat"
	"github.com/hellbot-id/hellbot/internal/domain"
)

// HellEventService fans an ingested hell-event alert out to every group
// whose settings admit it: rent active, bot on, and a notification mode that
// matches the event.
type HellEventService struct {
	settings  SettingsStore
	messenger chat.Messenger
	delay     time.Duration

	now func() time.Time
}

func NewHellEventService(settings SettingsStore, messenger chat.Messenger, delay time.Duration) *HellEventService {
	return &HellEventService{settings: settings, messenger: messenger, delay: delay, now: time.Now}
}

// Broadcast delivers the event to all eligible groups. Returns how many
// groups were sent to; per-group delivery failures are logged and skipped.
func (s *HellEventService) Broadcast(ctx context.Context, event domain.HellEvent) (int, error) {
	groups, err := s.settings.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	sent := 0
	for _, st := range groups {
		if !st.BotActive || !st.RentActiveAt(now) {
			continue
		}
		switch st.HellMode {
		case domain.HellModeOff:
			continue
		case domain.HellModeWatcher:
			if !event.IsWatcherChaos {
				continue
			}
		}

		if err := s.messenger.SendToGroup(ctx, st.GroupID, event.Text); err != nil {
			slog.Error("hell event broadcast", "group_id", st.GroupID, "error", err)
			continue
		}
		sent++

		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	slog.Info("hell event broadcast done", "boss", event.Boss, "sent", sent)
	return sent, nil
}
