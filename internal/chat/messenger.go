// Package chat is the boundary to the WhatsApp transport. The rest of the
// system depends only on these interfaces; the whatsmeow client lives behind
// them.
package chat

import "context"

// Messenger delivers plain-text messages. Formatting and templating are the
// caller's business.
type Messenger interface {
	SendToGroup(ctx context.Context, groupID, text string) error
	SendToContact(ctx context.Context, contactID, text string) error
}

// AdminChecker reports whether an actor is an administrator of a group,
// according to the transport's own membership data.
type AdminChecker interface {
	IsGroupAdmin(ctx context.Context, groupID, actorID string) (bool, error)
}
