package notify_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"flock-server/internal/domain"
	"flock-server/internal/service/notify"
)

func TestFormat(t *testing.T) {
	t.Run("Warning Broadcasts At Channel", func(t *testing.T) {
		notif := domain.PendingNotification{
			NotificationID: "reverse_shell",
			Details: json.RawMessage(`{
				"name": "reverse_shell",
				"computer_name": "Alice's Laptop",
				"username": "UUID1",
				"timestamp": "2019-01-07T13:57:05.000Z",
				"action": "added",
				"columns": {"pid": "4242"}
			}`),
		}

		text := notify.Format(notif)

		assert.True(t, strings.HasPrefix(text, "@here :warning: :rotating_light:A reverse shell was detected:rotating_light::\n```\n"))
		assert.True(t, strings.HasSuffix(text, "\n```"))
		assert.Contains(t, text, "Computer: Alice's Laptop (UUID1)")
		assert.Contains(t, text, "Timestamp: 2019-01-07T13:57:05.000Z")
		assert.Contains(t, text, "Action: added")
		assert.Contains(t, text, `"pid": "4242"`)
	})

	t.Run("Osquery Summary Digest", func(t *testing.T) {
		notif := domain.PendingNotification{
			NotificationID: "launchd",
			Details:        json.RawMessage(`{"name":"launchd","added":2,"removed":1,"other":0,"total":3}`),
		}

		text := notify.Format(notif)

		assert.Equal(t, "A new launch daemon was installed:\n```\n2 added, 1 removed, 0 other (3 events)\n```", text)
		assert.NotContains(t, text, "@here")
	})

	t.Run("User Notification Pretty Prints Details", func(t *testing.T) {
		notif := domain.PendingNotification{
			NotificationID: "user_registered",
			Details:        json.RawMessage(`{"username":"UUID1","name":"Jessica Jones"}`),
		}

		text := notify.Format(notif)

		assert.True(t, strings.HasPrefix(text, "A user has registered with the server:\n```\n"))
		assert.Contains(t, text, `"username": "UUID1"`)
		assert.Contains(t, text, `"name": "Jessica Jones"`)
	})

	t.Run("Withdrawn Catalog Entry Falls Back To Raw Id", func(t *testing.T) {
		notif := domain.PendingNotification{
			NotificationID: "withdrawn_notification",
			Details:        json.RawMessage(`{"a":1}`),
		}

		text := notify.Format(notif)

		assert.True(t, strings.HasPrefix(text, "withdrawn_notification:\n```\n"))
	})

	t.Run("Empty Details", func(t *testing.T) {
		notif := domain.PendingNotification{NotificationID: "server_enabled"}

		text := notify.Format(notif)

		assert.Equal(t, "A user enabled sharing data with the server:\n```\n{}\n```", text)
	})
}
