package config

import "time"

// Rent price tiers, in IDR. Non-standard amounts from promos are mapped to
// the nearest tier at webhook time (see service.PriceTable).
const (
	RentPrice7Days  = 10_000
	RentPrice30Days = 35_000
	RentPrice90Days = 90_000
)

// Renewal reminder windows.
const (
	RenewalReminderDays = 3                   // start daily reminders at N days left
	FinalReminderWindow = 12 * time.Hour      // one last warning inside this window
	StaleReminderMaxAge = 30 * 24 * time.Hour // stop nagging after a month expired
	StaleReminderMinAge = 24 * time.Hour
)

// NotificationRetention bounds the notification_log table; entries older
// than this are pruned during sweeps.
const NotificationRetention = 7 * 24 * time.Hour

// Cron schedules, evaluated in the operating timezone.
const (
	ScheduleHourlySweep    = "0 * * * *"
	ScheduleStaleSweep     = "0 10 */3 * *"
	ScheduleRotationRemind = "0 8 * * *"
)

// Commands that stay available while the bot is switched off in a group, so
// a group admin can always turn it back on, check why it is silent, or start
// a rental. A fresh group has the bot off, so the two activation paths must
// be reachable from that state.
var LifecycleCommands = []string{"bot", "status", "sewa", "trial"}
