package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// Truthy coerces the loosely typed detail-map values supplied by the
// enrichment collaborators: booleans pass through, numbers count when
// positive, and the usual affirmative strings count.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v > 0
	case int64:
		return v > 0
	case float64:
		return v > 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
	}
	return false
}

// ContainsAny reports whether text contains at least one keyword. Matching is
// plain substring; callers lowercase the text side.
func ContainsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether text contains every keyword.
func ContainsAll(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// clamp bounds a score to [0, cap].
func clamp(value, cap float64) float64 {
	if value < 0 {
		return 0
	}
	if value > cap {
		return cap
	}
	return value
}

// capSection clamps a section score and records the discarded amount in the
// breakdown as a negative <section>_cap_adjustment delta, so callers can see
// how much a cap absorbed.
func capSection(section string, score float64, breakdown map[string]float64, cap float64) float64 {
	capped := clamp(score, cap)
	if capped < score {
		breakdown[section+"_cap_adjustment"] = round4(capped - score)
	}
	return capped
}

func round4(v float64) float64 {
	s, _ := strconv.ParseFloat(fmt.Sprintf("%.4f", v), 64)
	return s
}

// asFloat coerces a detail value to a float64, reporting success. Strings are
// parsed; anything else fails.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// asInt coerces a detail value to a non-negative int, defaulting to 0.
func asInt(value any) int {
	f, ok := asFloat(value)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}
