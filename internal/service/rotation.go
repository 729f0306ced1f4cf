package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hellbot-id/hellbot/internal/chat"
)

// rotationSchedule is the fixed weekday rotation. The calendar never
// changes; only the daily reminder is real work.
var rotationSchedule = map[time.Weekday]string{
	time.Monday:    "Zaken & Baium",
	time.Tuesday:   "Queen Ant & Orfen",
	time.Wednesday: "Core & Zaken",
	time.Thursday:  "Baium & Queen Ant",
	time.Friday:    "Orfen & Core",
	time.Saturday:  "Antharas",
	time.Sunday:    "Valakas",
}

// RotationService answers "which monsters rotate in today" and broadcasts
// the daily reminder to active groups.
type RotationService struct {
	settings  SettingsStore
	messenger chat.Messenger
	loc       *time.Location
	delay     time.Duration

	now func() time.Time
}

func NewRotationService(settings SettingsStore, messenger chat.Messenger, loc *time.Location, delay time.Duration) *RotationService {
	return &RotationService{settings: settings, messenger: messenger, loc: loc, delay: delay, now: time.Now}
}

// Today returns the rotation for the current calendar day in the operating
// timezone.
func (s *RotationService) Today() string {
	return rotationSchedule[s.now().In(s.loc).Weekday()]
}

// ForDate returns the rotation for an arbitrary date.
func (s *RotationService) ForDate(t time.Time) string {
	return rotationSchedule[t.In(s.loc).Weekday()]
}

// BroadcastDaily sends the rotation reminder to every group with an active
// rental and the bot switched on.
func (s *RotationService) BroadcastDaily(ctx context.Context) {
	groups, err := s.settings.GetAll(ctx)
	if err != nil {
		slog.Error("rotation broadcast: list groups", "error", err)
		return
	}

	now := s.now()
	text := fmt.Sprintf("Rotasi monster hari ini: %s", s.Today())
	for _, st := range groups {
		if !st.BotActive || !st.RentActiveAt(now) {
			continue
		}
		if err := s.messenger.SendToGroup(ctx, st.GroupID, text); err != nil {
			slog.Error("rotation broadcast", "group_id", st.GroupID, "error", err)
			continue
		}
		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.delay):
			}
		}
	}
}
