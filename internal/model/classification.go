package model

import (
	"encoding/json"
	"fmt"
)

// Classification describes how an entity's current content relates to its
// historical baseline. It is a closed enumeration; code consuming it switches
// exhaustively over the three values.
type Classification int

const (
	// ClassificationUnknown is the zero value and never appears in a
	// completed outcome. It exists so an uninitialized field is detectable.
	ClassificationUnknown Classification = iota

	// StrategicShift indicates similarity below the configured threshold.
	// The entity's public content has changed in a meaningful way.
	StrategicShift

	// MinorUpdate indicates similarity at or above the threshold.
	// The content changed cosmetically, if at all.
	MinorUpdate

	// NewlyMonitored indicates no baseline exists for the entity.
	// First-seen entities always classify this way regardless of content.
	NewlyMonitored
)

// String returns the human-readable classification name.
func (c Classification) String() string {
	switch c {
	case StrategicShift:
		return "Strategic Shift"
	case MinorUpdate:
		return "Minor Update"
	case NewlyMonitored:
		return "Newly Monitored"
	case ClassificationUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// classificationNames maps stable wire names to classifications.
// These names are stored in the run database, so they must not change.
var classificationNames = map[string]Classification{
	"strategic_shift": StrategicShift,
	"minor_update":    MinorUpdate,
	"newly_monitored": NewlyMonitored,
}

// WireName returns the stable snake_case name used for storage.
func (c Classification) WireName() string {
	switch c {
	case StrategicShift:
		return "strategic_shift"
	case MinorUpdate:
		return "minor_update"
	case NewlyMonitored:
		return "newly_monitored"
	default:
		return "unknown"
	}
}

// ParseClassification converts a stored wire name back to a Classification.
func ParseClassification(s string) (Classification, error) {
	if c, ok := classificationNames[s]; ok {
		return c, nil
	}
	return ClassificationUnknown, fmt.Errorf("unknown classification %q", s)
}

// MarshalJSON implements json.Marshaler using the wire name.
func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.WireName())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClassification(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
