package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hellbot-id/hellbot/internal/chat"
	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/service"
)

const commandPrefix = "!"

type Deps struct {
	Cfg       *config.Config
	Gate      *service.PermissionGate
	Rental    *service.RentalService
	Payment   *service.PaymentService
	Rotation  *service.RotationService
	Prices    *service.PriceTable
	Settings  service.SettingsStore
	Messenger chat.Messenger
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// HandleMessage routes one inbound group message. Non-commands are ignored;
// commands pass the permission gate before their body runs. A permission
// denial gets an explicit reply; a message to a switched-off bot gets
// silence, because the off switch means exactly that.
func (h *Handler) HandleMessage(ctx context.Context, groupID, senderID, senderName, text string) {
	if !strings.HasPrefix(text, commandPrefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(text, commandPrefix))
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	allowed, err := h.deps.Gate.CanExecute(ctx, senderID, groupID, command)
	if err != nil {
		slog.Error("permission check failed", "group_id", groupID, "command", command, "error", err)
		return
	}
	if !allowed {
		h.replyDenied(ctx, groupID, senderID, command)
		return
	}

	switch command {
	case "sewa":
		h.handleRent(ctx, groupID, senderID, senderName, args)
	case "trial":
		h.handleTrial(ctx, groupID)
	case "status":
		h.handleStatus(ctx, groupID)
	case "bot":
		h.handleBotSwitch(ctx, groupID, args)
	case "setcmd":
		h.handleSetPermission(ctx, groupID, args)
	case "hellnotif":
		h.handleHellMode(ctx, groupID, args)
	case "rotasi":
		h.handleRotation(ctx, groupID)
	}
}

func (h *Handler) replyDenied(ctx context.Context, groupID, senderID, command string) {
	st, err := h.deps.Settings.Get(ctx, groupID)
	if err != nil {
		slog.Error("load settings for denial reply", "group_id", groupID, "error", err)
		return
	}
	// Off switch means silence, not nagging.
	if !st.BotActive {
		return
	}
	h.reply(ctx, groupID, "Perintah ini khusus admin grup.")
	slog.Info("command denied", "group_id", groupID, "sender", senderID, "command", command)
}

func (h *Handler) reply(ctx context.Context, groupID, text string) {
	if err := h.deps.Messenger.SendToGroup(ctx, groupID, text); err != nil {
		slog.Error("send reply", "group_id", groupID, "error", err)
	}
}
