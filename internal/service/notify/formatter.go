package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"flock-server/internal/domain"
)

// Format renders a queued notification as the chat message admins see.
// Warning-flagged types are broadcast at the whole channel.
func Format(notif domain.PendingNotification) string {
	entry, ok := domain.CatalogEntryByID(notif.NotificationID)
	if !ok {
		// The type was removed from the catalog after this record was
		// queued; deliver it raw rather than losing it.
		entry = domain.CatalogEntry{ID: notif.NotificationID, Description: notif.NotificationID}
	}

	body := renderBody(entry, notif.Details)

	if entry.IsWarning {
		return fmt.Sprintf("@here :warning: :rotating_light:%s:rotating_light::\n```\n%s\n```", entry.Description, body)
	}
	return fmt.Sprintf("%s:\n```\n%s\n```", entry.Description, body)
}

func renderBody(entry domain.CatalogEntry, details json.RawMessage) string {
	if entry.Category == domain.CategoryOsquery {
		if body, ok := renderOsquery(details); ok {
			return body
		}
	}
	return prettyJSON(details)
}

func renderOsquery(details json.RawMessage) (string, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(details, &probe); err != nil {
		return "", false
	}

	// Aggregated summaries carry a total count, single events never do.
	if _, ok := probe["total"]; ok {
		var summary domain.OsquerySummary
		if err := json.Unmarshal(details, &summary); err != nil {
			return "", false
		}
		return fmt.Sprintf("%d added, %d removed, %d other (%d events)",
			summary.Added, summary.Removed, summary.Other, summary.Total), true
	}

	var event domain.OsqueryEvent
	if err := json.Unmarshal(details, &event); err != nil {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Computer: %s (%s)", event.ComputerName, event.Username)
	if event.Timestamp != "" {
		fmt.Fprintf(&b, "\nTimestamp: %s", event.Timestamp)
	}
	if event.Action != "" {
		fmt.Fprintf(&b, "\nAction: %s", event.Action)
	}
	if len(event.Columns) > 0 {
		columns, err := json.MarshalIndent(event.Columns, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "\n%s", columns)
		}
	}
	return b.String(), true
}

func prettyJSON(details json.RawMessage) string {
	if len(details) == 0 {
		return "{}"
	}

	var buf strings.Builder
	var decoded any
	if err := json.Unmarshal(details, &decoded); err != nil {
		return string(details)
	}
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(decoded); err != nil {
		return string(details)
	}
	return strings.TrimRight(buf.String(), "\n")
}
