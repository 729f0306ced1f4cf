package handler

import (
	"context"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

// RegisterWhatsApp hooks the handler into the whatsmeow event stream. Each
// inbound group message is handled on its own goroutine; handlers share no
// state except the serialized settings store.
func RegisterWhatsApp(client *whatsmeow.Client, h *Handler) {
	client.AddEventHandler(func(evt interface{}) {
		msg, ok := evt.(*events.Message)
		if !ok {
			return
		}
		if !msg.Info.IsGroup || msg.Info.IsFromMe {
			return
		}

		text := msg.Message.GetConversation()
		if text == "" {
			text = msg.Message.GetExtendedTextMessage().GetText()
		}
		if text == "" {
			return
		}

		go h.HandleMessage(context.Background(),
			msg.Info.Chat.String(),
			msg.Info.Sender.ToNonAD().String(),
			msg.Info.PushName,
			text)
	})
}
