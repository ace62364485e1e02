package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flock-server/internal/domain"
	"flock-server/internal/service/agent"
)

type command struct {
	name        string
	args        []string
	description string
	run         func(ctx context.Context, args []string) string
}

func (c command) usage() string {
	if len(c.args) == 0 {
		return c.name
	}
	return c.name + " <" + strings.Join(c.args, "> <") + ">"
}

// registerCommands builds the dispatch table. Order matters: help and
// list_notifications report in registration order.
func (b *Bot) registerCommands() {
	b.commands = []command{
		{
			name:        "help",
			description: "show the commands I understand",
			run:         b.cmdHelp,
		},
		{
			name:        "list_users",
			description: "list all registered users",
			run:         b.cmdListUsers,
		},
		{
			name:        "delete_user",
			args:        []string{"username"},
			description: "delete a registered user",
			run:         b.cmdDeleteUser,
		},
		{
			name:        "rename_user",
			args:        []string{"username", "name"},
			description: "change a user's display name",
			run:         b.cmdRenameUser,
		},
		{
			name:        "list_notifications",
			description: "show which notifications are enabled",
			run:         b.cmdListNotifications,
		},
		{
			name:        "enable_notification",
			args:        []string{"notification_id"},
			description: "enable a notification",
			run:         b.cmdEnableNotification,
		},
		{
			name:        "disable_notification",
			args:        []string{"notification_id"},
			description: "disable a notification",
			run:         b.cmdDisableNotification,
		},
	}
}

func (b *Bot) cmdHelp(ctx context.Context, args []string) string {
	var sb strings.Builder
	sb.WriteString("Here's what I can do:\n")
	for _, cmd := range b.commands {
		fmt.Fprintf(&sb, "`%s`: %s\n", cmd.usage(), cmd.description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) cmdListUsers(ctx context.Context, args []string) string {
	agents, err := b.agentSvc.List(ctx)
	if err != nil {
		return "I couldn't look up the user list, sorry."
	}
	if len(agents) == 0 {
		return "No users are registered."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "There are %d registered users:\n", len(agents))
	for _, a := range agents {
		fmt.Fprintf(&sb, "%s", a.Username)
		if a.Name != "" {
			fmt.Fprintf(&sb, " (%s)", a.Name)
		}
		if a.LastSeenAt != nil {
			fmt.Fprintf(&sb, ", last seen %s", a.LastSeenAt.UTC().Format(time.RFC3339))
		} else {
			sb.WriteString(", never seen")
		}
		if a.OSVersion != nil && *a.OSVersion != "" {
			fmt.Fprintf(&sb, ", %s", *a.OSVersion)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) cmdDeleteUser(ctx context.Context, args []string) string {
	username := args[0]
	if !domain.ValidUsername(username) {
		return "Usernames must only contain letters, numbers, '-', or '_'"
	}

	err := b.agentSvc.Delete(ctx, username)
	if errors.Is(err, agent.ErrAgentNotFound) {
		return "No users with that username are registered"
	}
	if err != nil {
		return "I couldn't delete that user, sorry."
	}
	return fmt.Sprintf("Deleted user %s", username)
}

func (b *Bot) cmdRenameUser(ctx context.Context, args []string) string {
	username, name := args[0], args[1]
	if !domain.ValidUsername(username) {
		return "Usernames must only contain letters, numbers, '-', or '_'"
	}

	err := b.agentSvc.Rename(ctx, username, name)
	if errors.Is(err, agent.ErrAgentNotFound) {
		return "No users with that username are registered"
	}
	if err != nil {
		return "I couldn't rename that user, sorry."
	}
	return fmt.Sprintf("Renamed user %s to \"%s\"", username, domain.SanitizeName(name))
}

func (b *Bot) cmdListNotifications(ctx context.Context, args []string) string {
	prefs, err := b.settingsSvc.Get(ctx)
	if err != nil {
		return "I couldn't load the notification settings, sorry."
	}

	var sb strings.Builder
	sb.WriteString("Here are the notifications I know about:\n")
	for _, entry := range domain.Catalog() {
		marker := ":x:"
		if prefs[entry.ID] {
			marker = ":white_check_mark:"
		}
		fmt.Fprintf(&sb, "%s `%s`: %s\n", marker, entry.ID, entry.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) cmdEnableNotification(ctx context.Context, args []string) string {
	return b.setNotification(ctx, args[0], true)
}

func (b *Bot) cmdDisableNotification(ctx context.Context, args []string) string {
	return b.setNotification(ctx, args[0], false)
}

func (b *Bot) setNotification(ctx context.Context, id string, enabled bool) string {
	if _, ok := domain.CatalogEntryByID(id); !ok {
		return "I don't know that notification. Run `list_notifications` to see them all."
	}

	changed, err := b.settingsSvc.SetEnabled(ctx, id, enabled)
	if err != nil {
		return "I couldn't update the notification settings, sorry."
	}

	switch {
	case !changed && enabled:
		return "Notification already enabled"
	case !changed && !enabled:
		return "Notification already disabled"
	case enabled:
		return fmt.Sprintf("Enabled notification %s", id)
	default:
		return fmt.Sprintf("Disabled notification %s", id)
	}
}
