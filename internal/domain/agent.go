package domain

import (
	"strings"
	"time"
)

type Agent struct {
	Username   string     `json:"username" db:"username"`
	Name       string     `json:"name" db:"name"`
	Token      string     `json:"-" db:"token"`
	OSVersion  *string    `json:"os_version,omitempty" db:"os_version"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type RegisterAgentInput struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
}

const usernameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ01234567890_-"

// Characters never allowed in display names, stripped on write.
const nameBlacklist = "`{}!@#$%^&*_"

// ValidUsername reports whether s is non-empty and contains only
// letters, numbers, '-', and '_'.
func ValidUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(usernameChars, c) {
			return false
		}
	}
	return true
}

// SanitizeName strips blacklisted punctuation from a display name.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, c := range s {
		if !strings.ContainsRune(nameBlacklist, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
