package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hellbot-id/hellbot/internal/domain"
)

func (h *Handler) handleBotSwitch(ctx context.Context, groupID string, args []string) {
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		h.reply(ctx, groupID, "Pakai: !bot on  atau  !bot off")
		return
	}
	active := args[0] == "on"

	if active {
		rentActive, err := h.deps.Rental.IsActive(ctx, groupID)
		if err != nil {
			slog.Error("check rent before enabling", "group_id", groupID, "error", err)
			return
		}
		if !rentActive {
			h.reply(ctx, groupID, "Sewa belum aktif. Aktifkan dengan !sewa atau !trial dulu.")
			return
		}
	}

	if err := h.deps.Rental.SetBotActive(ctx, groupID, active); err != nil {
		slog.Error("set bot active", "group_id", groupID, "error", err)
		return
	}
	h.reply(ctx, groupID, fmt.Sprintf("Bot sekarang %s.", onOff(active)))
}

func (h *Handler) handleSetPermission(ctx context.Context, groupID string, args []string) {
	if len(args) != 2 {
		h.reply(ctx, groupID, "Pakai: !setcmd <perintah> <admin|all>")
		return
	}
	command := strings.ToLower(args[0])
	level := domain.PermissionLevel(strings.ToLower(args[1]))

	if err := h.deps.Rental.SetCommandPermission(ctx, groupID, command, level); err != nil {
		if err == domain.ErrInvalidPermission {
			h.reply(ctx, groupID, "Level harus admin atau all.")
			return
		}
		slog.Error("set command permission", "group_id", groupID, "command", command, "error", err)
		return
	}
	h.reply(ctx, groupID, fmt.Sprintf("Perintah %s sekarang untuk %s.", command, level))
}

func (h *Handler) handleHellMode(ctx context.Context, groupID string, args []string) {
	if len(args) == 0 {
		h.reply(ctx, groupID, "Pakai: !hellnotif <all|watcher|off>")
		return
	}
	mode := domain.HellMode(strings.ToLower(args[0]))

	if err := h.deps.Rental.SetHellMode(ctx, groupID, mode); err != nil {
		if err == domain.ErrInvalidHellMode {
			h.reply(ctx, groupID, "Mode harus all, watcher, atau off.")
			return
		}
		slog.Error("set hell mode", "group_id", groupID, "error", err)
		return
	}
	h.reply(ctx, groupID, fmt.Sprintf("Notifikasi hell event: %s.", mode))
}

func (h *Handler) handleRotation(ctx context.Context, groupID string) {
	h.reply(ctx, groupID, fmt.Sprintf("Rotasi monster hari ini: %s", h.deps.Rotation.Today()))
}
