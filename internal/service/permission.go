package service

import (
	"context"
	"fmt"

	"github.com/hellbot-id/hellbot/internal/chat"
	"github.com/hellbot-id/hellbot/internal/config"
	"github.com/hellbot-id/hellbot/internal/domain"
)

// PermissionGate decides whether an actor may run a command in a group.
// Resolution order: the global bot owner always may, so support is never
// locked out by a misconfigured group; a switched-off bot only honors the
// lifecycle commands; everything else follows the per-group override map,
// defaulting to all-members.
type PermissionGate struct {
	settings SettingsStore
	admins   chat.AdminChecker
	cfg      *config.Config
}

func NewPermissionGate(settings SettingsStore, admins chat.AdminChecker, cfg *config.Config) *PermissionGate {
	return &PermissionGate{settings: settings, admins: admins, cfg: cfg}
}

func (g *PermissionGate) CanExecute(ctx context.Context, actorID, groupID, command string) (bool, error) {
	if g.cfg.IsOwner(actorID) {
		return true, nil
	}

	st, err := g.settings.Get(ctx, groupID)
	if err != nil {
		return false, fmt.Errorf("load group settings: %w", err)
	}

	if !st.BotActive && !isLifecycleCommand(command) {
		return false, nil
	}

	if st.PermissionFor(command) == domain.PermissionAdmin {
		isAdmin, err := g.admins.IsGroupAdmin(ctx, groupID, actorID)
		if err != nil {
			return false, fmt.Errorf("check group admin: %w", err)
		}
		return isAdmin, nil
	}
	return true, nil
}

func isLifecycleCommand(command string) bool {
	for _, c := range config.LifecycleCommands {
		if c == command {
			return true
		}
	}
	return false
}
