package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationCategory string

const (
	CategoryUser    NotificationCategory = "user"
	CategoryFlock   NotificationCategory = "flock"
	CategoryOsquery NotificationCategory = "osquery"
)

// CatalogEntry is a compile-time-known notification type.
type CatalogEntry struct {
	ID          string
	Category    NotificationCategory
	Description string
	IsWarning   bool
}

// catalog is ordered; help and list_notifications output follow this order.
var catalog = []CatalogEntry{
	{ID: "user_registered", Category: CategoryUser, Description: "A user has registered with the server"},
	{ID: "user_already_exists", Category: CategoryUser, Description: "A user tried to register with an existing username (they might be trying to re-setup their Flock Agent; if so delete the existing user so they can finish registering)"},
	{ID: "server_enabled", Category: CategoryFlock, Description: "A user enabled sharing data with the server"},
	{ID: "server_disabled", Category: CategoryFlock, Description: "A user disabled sharing data with the server"},
	{ID: "twigs_enabled", Category: CategoryFlock, Description: "A user enabled twigs"},
	{ID: "twigs_disabled", Category: CategoryFlock, Description: "A user disabled twigs"},
	{ID: "reverse_shell", Category: CategoryOsquery, Description: "A reverse shell was detected", IsWarning: true},
	{ID: "launchd", Category: CategoryOsquery, Description: "A new launch daemon was installed"},
	{ID: "startup_items", Category: CategoryOsquery, Description: "A new startup item was installed"},
}

// Catalog returns every known notification type in registration order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogIDs returns the id set of the catalog, in registration order.
func CatalogIDs() []string {
	ids := make([]string, len(catalog))
	for i, e := range catalog {
		ids[i] = e.ID
	}
	return ids
}

// CatalogEntryByID looks up a catalog entry.
func CatalogEntryByID(id string) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// PendingNotification is a queued, not-yet-delivered alert record.
// Delivered transitions false to true exactly once and never reverts;
// records are never deleted.
type PendingNotification struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	NotificationID string          `json:"notification_id" db:"notification_id"`
	Details        json.RawMessage `json:"details,omitempty" db:"details"`
	Delivered      bool            `json:"delivered" db:"delivered"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// OsqueryEvent is the details payload of a single-event osquery notification.
type OsqueryEvent struct {
	Name         string         `json:"name"`
	ComputerName string         `json:"computer_name"`
	Username     string         `json:"username"`
	Timestamp    string         `json:"timestamp,omitempty"`
	Action       string         `json:"action,omitempty"`
	Columns      map[string]any `json:"columns,omitempty"`
}

// OsquerySummary is the details payload of a pre-aggregated osquery
// notification covering several events of the same type in one batch.
type OsquerySummary struct {
	Name    string `json:"name"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Other   int    `json:"other"`
	Total   int    `json:"total"`
}
