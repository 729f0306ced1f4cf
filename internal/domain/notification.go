package domain

type NotificationKind string

const (
	NotifyRenewal NotificationKind = "renewal"
	NotifyFinal   NotificationKind = "final"
	NotifyExpired NotificationKind = "expired"
	NotifyStale   NotificationKind = "stale"
)

// NotificationKey identifies one recipient of one kind of reminder. At most
// one send per key per calendar day is permitted.
type NotificationKey struct {
	GroupID   string
	ContactID string
	Kind      NotificationKind
}
