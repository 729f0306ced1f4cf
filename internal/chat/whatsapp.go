package chat

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// WhatsApp adapts a whatsmeow client to the Messenger and AdminChecker
// interfaces.
type WhatsApp struct {
	client *whatsmeow.Client
}

// NewWhatsApp builds a whatsmeow client with its session store in Postgres.
// The caller owns connecting and pairing.
func NewWhatsApp(ctx context.Context, sessionDSN string) (*WhatsApp, error) {
	db, err := sql.Open("pgx", sessionDSN)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	storeLog := waLog.Stdout("Session", "WARN", false)
	container := sqlstore.NewWithDB(db, "postgres", storeLog)
	if err := container.Upgrade(); err != nil {
		return nil, fmt.Errorf("upgrade session store: %w", err)
	}

	device, err := container.GetFirstDevice()
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	clientLog := waLog.Stdout("Client", "WARN", false)
	return &WhatsApp{client: whatsmeow.NewClient(device, clientLog)}, nil
}

// Client exposes the underlying whatsmeow client for event registration and
// connection management in main.
func (w *WhatsApp) Client() *whatsmeow.Client {
	return w.client
}

func (w *WhatsApp) SendToGroup(ctx context.Context, groupID, text string) error {
	jid, err := types.ParseJID(groupID)
	if err != nil {
		return fmt.Errorf("parse group jid %q: %w", groupID, err)
	}
	return w.send(ctx, jid, text)
}

func (w *WhatsApp) SendToContact(ctx context.Context, contactID, text string) error {
	jid, err := types.ParseJID(contactID)
	if err != nil {
		return fmt.Errorf("parse contact jid %q: %w", contactID, err)
	}
	return w.send(ctx, jid, text)
}

func (w *WhatsApp) send(ctx context.Context, to types.JID, text string) error {
	_, err := w.client.SendMessage(ctx, to, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	return nil
}

func (w *WhatsApp) IsGroupAdmin(ctx context.Context, groupID, actorID string) (bool, error) {
	jid, err := types.ParseJID(groupID)
	if err != nil {
		return false, fmt.Errorf("parse group jid %q: %w", groupID, err)
	}
	actor, err := types.ParseJID(actorID)
	if err != nil {
		return false, fmt.Errorf("parse actor jid %q: %w", actorID, err)
	}

	info, err := w.client.GetGroupInfo(jid)
	if err != nil {
		return false, fmt.Errorf("get group info: %w", err)
	}
	for _, p := range info.Participants {
		if p.JID.User == actor.User {
			return p.IsAdmin || p.IsSuperAdmin, nil
		}
	}
	return false, nil
}
