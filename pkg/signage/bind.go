package signage

import (
	"fmt"
	"strconv"
	"time"
)

// bindAttributes applies raw request attributes to a content item through an
// explicit allow-list. Keys outside the list are rejected with a field
// error, never silently dropped. Empty values clear optional fields.
func bindAttributes(content *Content, attrs map[string]string, allowed []string) *ValidationError {
	verr := NewValidationError()

	permitted := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		permitted[f] = true
	}

	for key, value := range attrs {
		if !permitted[key] {
			verr.Add(key, "is not a permitted field")
			continue
		}
		switch key {
		case "name":
			content.Name = value
		case "data":
			content.Data = value
		case "duration":
			d, err := strconv.Atoi(value)
			if err != nil {
				verr.Add("duration", "is not a number")
				continue
			}
			content.Duration = d
		case "start_time":
			t, err := parseTimeField(value)
			if err != nil {
				verr.Add("start_time", "is not a valid time")
				continue
			}
			content.StartTime = t
		case "end_time":
			t, err := parseTimeField(value)
			if err != nil {
				verr.Add("end_time", "is not a valid time")
				continue
			}
			content.EndTime = t
		default:
			// Registered in the allow-list but not a bindable attribute.
			verr.Add(key, "is not a permitted field")
		}
	}

	if verr.Any() {
		return verr
	}
	return nil
}

// validateContent checks model invariants after binding.
func validateContent(content *Content) *ValidationError {
	verr := NewValidationError()

	if content.Name == "" {
		verr.Add("name", "can't be blank")
	}
	if content.Duration < 0 {
		verr.Add("duration", "must be greater than or equal to 0")
	}
	if content.StartTime != nil && content.EndTime != nil && content.EndTime.Before(*content.StartTime) {
		verr.Add("end_time", "must not precede start_time")
	}

	if verr.Any() {
		return verr
	}
	return nil
}

func parseTimeField(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", value, err)
	}
	utc := t.UTC()
	return &utc, nil
}
