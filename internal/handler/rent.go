package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hellbot-id/hellbot/internal/domain"
)

func (h *Handler) handleRent(ctx context.Context, groupID, senderID, senderName string, args []string) {
	if len(args) == 0 {
		h.reply(ctx, groupID, h.priceList())
		return
	}

	days, err := strconv.Atoi(args[0])
	if err != nil || days <= 0 {
		h.reply(ctx, groupID, "Durasi tidak valid. "+h.priceList())
		return
	}
	if _, ok := h.deps.Prices.AmountFor(days); !ok {
		h.reply(ctx, groupID, "Paket tidak tersedia. "+h.priceList())
		return
	}

	owner := domain.Owner{Name: senderName, ContactID: senderID}
	order, err := h.deps.Payment.CreateRentInvoice(ctx, groupID, groupID, owner, days)
	if err != nil {
		slog.Error("create rent invoice", "group_id", groupID, "days", days, "error", err)
		h.reply(ctx, groupID, "Gagal membuat tagihan, coba lagi nanti.")
		return
	}

	h.reply(ctx, groupID, fmt.Sprintf(
		"Tagihan sewa %d hari dibuat. Link pembayaran dikirim ke %s lewat pesan pribadi.",
		days, senderName))
	if err := h.deps.Messenger.SendToContact(ctx, senderID, fmt.Sprintf(
		"Link pembayaran sewa bot %d hari (%s): %s\nBot aktif otomatis setelah pembayaran diterima.",
		days, order.Amount.StringFixed(0), order.PaymentURL)); err != nil {
		slog.Error("send payment link", "contact_id", senderID, "error", err)
	}
}

func (h *Handler) handleTrial(ctx context.Context, groupID string) {
	expiry, err := h.deps.Rental.ActivateTrial(ctx, groupID)
	if errors.Is(err, domain.ErrTrialAlreadyUsed) {
		h.reply(ctx, groupID, "Grup ini sudah pernah memakai trial. Lanjut dengan perintah sewa ya.")
		return
	}
	if err != nil {
		slog.Error("activate trial", "group_id", groupID, "error", err)
		h.reply(ctx, groupID, "Gagal mengaktifkan trial, coba lagi nanti.")
		return
	}
	h.reply(ctx, groupID, fmt.Sprintf(
		"Trial aktif sampai %s. Selamat mencoba!", expiry.Format("02-01-2006 15:04")))
}

func (h *Handler) handleStatus(ctx context.Context, groupID string) {
	st, err := h.deps.Settings.Get(ctx, groupID)
	if err != nil {
		slog.Error("load settings for status", "group_id", groupID, "error", err)
		return
	}

	active, err := h.deps.Rental.IsActive(ctx, groupID)
	if err != nil {
		slog.Error("check rent active", "group_id", groupID, "error", err)
		return
	}

	var b strings.Builder
	if active {
		fmt.Fprintf(&b, "Sewa: aktif sampai %s\n", st.RentExpiry.Format("02-01-2006 15:04"))
	} else {
		b.WriteString("Sewa: tidak aktif\n")
	}
	fmt.Fprintf(&b, "Bot: %s\n", onOff(st.BotActive))
	fmt.Fprintf(&b, "Trial: %s\n", usedUnused(st.HasUsedTrial))
	fmt.Fprintf(&b, "Notifikasi hell: %s", st.HellMode)
	h.reply(ctx, groupID, b.String())
}

func (h *Handler) priceList() string {
	var b strings.Builder
	b.WriteString("Paket sewa bot:\n")
	for _, tier := range h.deps.Prices.Tiers() {
		fmt.Fprintf(&b, "- %d hari: Rp%s\n", tier.Days, tier.Amount.StringFixed(0))
	}
	b.WriteString("Pesan dengan: !sewa <hari>")
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func usedUnused(v bool) string {
	if v {
		return "sudah dipakai"
	}
	return "tersedia"
}
