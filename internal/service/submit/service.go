package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"flock-server/internal/domain"
	"flock-server/internal/repository"
	"flock-server/internal/service/agent"
	"flock-server/internal/service/archive"
	"flock-server/internal/service/notify"
)

// ValidationError rejects a whole submission; its message is what the
// agent sees in the error_msg field.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type Service interface {
	// Submit validates, archives, and classifies one telemetry batch.
	// The whole batch is rejected if any item fails validation; on
	// success it returns the number of items processed.
	Submit(ctx context.Context, a *domain.Agent, body []byte) (int, error)

	// SubmitFlockLogs accepts a batch of control-plane events, each of
	// which enqueues one notification.
	SubmitFlockLogs(ctx context.Context, a *domain.Agent, body []byte) (int, error)
}

type service struct {
	telemetryRepo repository.TelemetryRepository
	agentSvc      agent.Service
	notifySvc     notify.Service
	archiveSvc    archive.Service
}

func NewService(
	telemetryRepo repository.TelemetryRepository,
	agentSvc agent.Service,
	notifySvc notify.Service,
	archiveSvc archive.Service,
) Service {
	return &service{
		telemetryRepo: telemetryRepo,
		agentSvc:      agentSvc,
		notifySvc:     notifySvc,
		archiveSvc:    archiveSvc,
	}
}

func (s *service) Submit(ctx context.Context, a *domain.Agent, body []byte) (int, error) {
	records, err := parseBatch(body, a.Username)
	if err != nil {
		return 0, err
	}

	docs := make([]json.RawMessage, len(records))
	var osVersion *string
	for i := range records {
		r := &records[i]

		// Normalize unixTime into a canonical timestamp and tag the
		// item with the identity that submitted it.
		if ts := r.Timestamp(); ts != "" {
			r.Extra["@timestamp"] = ts
		}
		r.Extra["flock_username"] = a.Username
		r.Extra["flock_name"] = a.Name

		if v := osVersionOf(*r); v != "" {
			osVersion = &v
		}

		doc, err := json.Marshal(r)
		if err != nil {
			return 0, err
		}
		docs[i] = doc
	}

	index := domain.TelemetryIndex(time.Now())
	if err := s.telemetryRepo.ArchiveBatch(ctx, index, docs); err != nil {
		return 0, err
	}

	if s.archiveSvc != nil {
		if err := s.archiveSvc.SnapshotBatch(ctx, a.Username, body); err != nil {
			log.Printf("submit: batch snapshot failed: %v", err)
		}
	}

	if err := s.agentSvc.CheckIn(ctx, a.Username, osVersion); err != nil {
		log.Printf("submit: check-in update for %s failed: %v", a.Username, err)
	}

	s.classify(ctx, a, records)

	return len(records), nil
}

func (s *service) SubmitFlockLogs(ctx context.Context, a *domain.Agent, body []byte) (int, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, validationf("Invalid JSON object")
	}
	items, ok := raw.([]any)
	if !ok {
		return 0, validationf("Data is not an array")
	}

	logs := make([]domain.FlockLog, len(items))
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return 0, validationf("Item %d is not an object", i)
		}

		itemJSON, err := json.Marshal(item)
		if err != nil {
			return 0, err
		}
		var flockLog domain.FlockLog
		if err := json.Unmarshal(itemJSON, &flockLog); err != nil {
			return 0, validationf("Item %d is not a valid log event", i)
		}
		if err := flockLog.Validate(); err != nil {
			return 0, validationf("Item %d: %v", i, err)
		}
		logs[i] = flockLog
	}

	for _, flockLog := range logs {
		details, err := json.Marshal(struct {
			Username string `json:"username"`
			Name     string `json:"name,omitempty"`
			domain.FlockLog
		}{Username: a.Username, Name: a.Name, FlockLog: flockLog})
		if err != nil {
			return 0, err
		}
		if err := s.notifySvc.Enqueue(ctx, flockLog.Type, details); err != nil {
			return 0, err
		}
	}

	return len(logs), nil
}

// parseBatch validates the request body atomically: every item must be an
// object whose hostIdentifier matches the authenticated username, or the
// whole batch fails.
func parseBatch(body []byte, username string) ([]domain.TelemetryRecord, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, validationf("Invalid JSON object")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, validationf("Data is not an array")
	}

	records := make([]domain.TelemetryRecord, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, validationf("Item %d is not an object", i)
		}
		host, _ := obj["hostIdentifier"].(string)
		if host == "" || host != username {
			return nil, validationf("Item %d does not contain the correct hostIdentifier", i)
		}

		itemJSON, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemJSON, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// classify runs the second pass over an accepted batch: items whose name
// matches an osquery catalog entry are grouped by that name. A lone item
// becomes a detailed notification; a larger group collapses into one
// added/removed/other digest.
func (s *service) classify(ctx context.Context, a *domain.Agent, records []domain.TelemetryRecord) {
	groups := make(map[string][]domain.TelemetryRecord)
	var order []string

	for _, r := range records {
		entry, ok := domain.CatalogEntryByID(r.Name)
		if !ok || entry.Category != domain.CategoryOsquery {
			continue
		}
		if _, seen := groups[r.Name]; !seen {
			order = append(order, r.Name)
		}
		groups[r.Name] = append(groups[r.Name], r)
	}

	for _, name := range order {
		group := groups[name]

		var details any
		if len(group) == 1 {
			r := group[0]
			details = domain.OsqueryEvent{
				Name:         name,
				ComputerName: computerName(a),
				Username:     a.Username,
				Timestamp:    r.Timestamp(),
				Action:       r.Action,
				Columns:      r.Columns,
			}
		} else {
			summary := domain.OsquerySummary{Name: name, Total: len(group)}
			for _, r := range group {
				switch r.Action {
				case "added":
					summary.Added++
				case "removed":
					summary.Removed++
				default:
					summary.Other++
				}
			}
			details = summary
		}

		payload, err := json.Marshal(details)
		if err != nil {
			continue
		}
		if err := s.notifySvc.Enqueue(ctx, name, payload); err != nil {
			log.Printf("submit: enqueue %s failed: %v", name, err)
		}
	}
}

func computerName(a *domain.Agent) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Username
}

// osVersionOf extracts a human-readable OS version from the osquery
// os_version table when a batch happens to include it.
func osVersionOf(r domain.TelemetryRecord) string {
	if r.Name != "os_version" && !strings.HasSuffix(r.Name, "/os_version") {
		return ""
	}
	name := r.Column("name")
	version := r.Column("version")
	if name == "" && version == "" {
		return ""
	}
	return strings.TrimSpace(name + " " + version)
}
