package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the canonical form of the @timestamp field attached to
// archived telemetry.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// TelemetryIndex returns the name of the day partition covering t.
func TelemetryIndex(t time.Time) string {
	return "flock-" + t.Format("2006-01-02")
}

// TelemetryRecord is one item of a submitted batch. Agents send arbitrary
// key/value documents; the named fields are the ones the server inspects
// for validation and classification, everything else rides along in Extra
// and is archived verbatim.
type TelemetryRecord struct {
	HostIdentifier string
	UnixTime       *int64
	Name           string
	Action         string
	Columns        map[string]any

	// Extra holds every field not captured above, preserved as sent.
	Extra map[string]any
}

func (r *TelemetryRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// A named field holding an unexpected type falls through to Extra so
	// the archived document keeps it verbatim.
	*r = TelemetryRecord{Extra: make(map[string]any)}
	for key, value := range raw {
		switch key {
		case "hostIdentifier":
			if s, ok := value.(string); ok {
				r.HostIdentifier = s
			} else {
				r.Extra[key] = value
			}
		case "unixTime":
			if n, ok := toUnixTime(value); ok {
				r.UnixTime = &n
			} else {
				r.Extra[key] = value
			}
		case "name":
			if s, ok := value.(string); ok {
				r.Name = s
			} else {
				r.Extra[key] = value
			}
		case "action":
			if s, ok := value.(string); ok {
				r.Action = s
			} else {
				r.Extra[key] = value
			}
		case "columns":
			if m, ok := value.(map[string]any); ok {
				r.Columns = m
			} else {
				r.Extra[key] = value
			}
		default:
			r.Extra[key] = value
		}
	}
	return nil
}

func (r TelemetryRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Extra)+5)
	for key, value := range r.Extra {
		doc[key] = value
	}
	if r.HostIdentifier != "" {
		doc["hostIdentifier"] = r.HostIdentifier
	}
	if r.UnixTime != nil {
		doc["unixTime"] = *r.UnixTime
	}
	if r.Name != "" {
		doc["name"] = r.Name
	}
	if r.Action != "" {
		doc["action"] = r.Action
	}
	if r.Columns != nil {
		doc["columns"] = r.Columns
	}
	return json.Marshal(doc)
}

// Timestamp renders the record's unixTime as a canonical UTC timestamp,
// or "" if the record has none.
func (r TelemetryRecord) Timestamp() string {
	if r.UnixTime == nil {
		return ""
	}
	return time.Unix(*r.UnixTime, 0).UTC().Format(TimestampLayout)
}

// Column returns a string-valued column, or "" if absent.
func (r TelemetryRecord) Column(name string) string {
	if r.Columns == nil {
		return ""
	}
	s, _ := r.Columns[name].(string)
	return s
}

// toUnixTime accepts the epoch-seconds encodings agents actually send:
// JSON numbers and decimal strings.
func toUnixTime(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// FlockLog is a control-plane event reported by an agent: the user toggled
// sharing with the server, or toggled some set of twigs.
type FlockLog struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp"`
	TwigIDs   []string `json:"twig_ids,omitempty"`
}

// FlockLogTypes are the accepted control-plane event types; the bool marks
// whether the event must carry twig_ids.
var FlockLogTypes = map[string]bool{
	"server_enabled":  false,
	"server_disabled": false,
	"twigs_enabled":   true,
	"twigs_disabled":  true,
}

// Validate checks the event's required fields.
func (l FlockLog) Validate() error {
	needsTwigs, ok := FlockLogTypes[l.Type]
	if !ok {
		return fmt.Errorf("unknown type %q", l.Type)
	}
	if l.Timestamp == "" {
		return fmt.Errorf("missing timestamp")
	}
	if needsTwigs && len(l.TwigIDs) == 0 {
		return fmt.Errorf("missing twig_ids")
	}
	return nil
}
