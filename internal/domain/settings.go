package domain

// SettingsKey is the key of the single persisted settings record.
const SettingsKey = "notification_prefs"

// NotificationSettings maps notification ids to their enabled state.
type NotificationSettings map[string]bool

// DefaultSettings returns an all-enabled mapping over the whole catalog.
func DefaultSettings() NotificationSettings {
	settings := make(NotificationSettings, len(catalog))
	for _, e := range catalog {
		settings[e.ID] = true
	}
	return settings
}

// ReconcileSettings corrects a stored mapping against the catalog: ids
// missing from the mapping default to enabled, ids no longer in the catalog
// are pruned. The returned mapping's key set always equals catalogIDs
// exactly; changed reports whether the stored mapping needed correction
// and should be re-saved.
func ReconcileSettings(catalogIDs []string, stored NotificationSettings) (NotificationSettings, bool) {
	corrected := make(NotificationSettings, len(catalogIDs))
	changed := len(stored) != len(catalogIDs)

	for _, id := range catalogIDs {
		enabled, ok := stored[id]
		if !ok {
			enabled = true
			changed = true
		}
		corrected[id] = enabled
	}
	return corrected, changed
}
