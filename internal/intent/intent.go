// Package intent normalizes third-party buyer-intent payloads into a single
// provider-agnostic shape the scoring engine can consume. Each provider ships
// its own field names and level vocabulary; everything funnels into the four
// levels none, low, medium and high.
package intent

import (
	"strconv"
	"strings"
)

// Signal is the normalized intent payload. It is attached to a lead's detail
// bag and read back by the heat calculator.
type Signal struct {
	Provider    string         `json:"provider"`
	IntentLevel string         `json:"intent_level"`
	SurgeScore  float64        `json:"surge_score"`
	TopicCount  int            `json:"topic_count"`
	Topics      []string       `json:"topics"`
	Confidence  float64        `json:"confidence"`
	BuyingStage string         `json:"buying_stage,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// Detail flattens the signal into the map shape stored on a lead.
func (s Signal) Detail() map[string]any {
	d := map[string]any{
		"provider":     s.Provider,
		"intent_level": s.IntentLevel,
		"surge_score":  s.SurgeScore,
		"topic_count":  s.TopicCount,
		"topics":       s.Topics,
		"confidence":   s.Confidence,
	}
	if s.BuyingStage != "" {
		d["buying_stage"] = s.BuyingStage
	}
	return d
}

var levelSynonyms = map[string]string{
	"very-high": "high",
	"hot":       "high",
	"warm":      "medium",
	"cold":      "low",
}

var supportedLevels = map[string]bool{
	"none": true, "low": true, "medium": true, "high": true,
}

// NormalizeLevel folds a provider level string to the canonical vocabulary.
// Unknown values map to "none" rather than erroring; intent data is advisory.
func NormalizeLevel(value any) string {
	if value == nil {
		return "none"
	}
	level := strings.ToLower(strings.TrimSpace(toString(value)))
	if mapped, ok := levelSynonyms[level]; ok {
		level = mapped
	}
	if !supportedLevels[level] {
		return "none"
	}
	return level
}

// Normalize converts a raw provider payload into a Signal. The provider name
// selects the field mapping; unrecognized providers get the permissive
// fallback mapping used for mock data.
func Normalize(provider string, payload map[string]any) Signal {
	name := strings.ToLower(provider)
	if name == "" {
		name = "unknown"
	}
	if payload == nil {
		payload = map[string]any{}
	}

	switch name {
	case "bombora":
		return normalizeBombora(payload)
	case "6sense", "sixsense":
		return normalizeSixSense(payload)
	default:
		topics := asTopics(payload["topics"])
		return Signal{
			Provider:    name,
			IntentLevel: NormalizeLevel(payload["intent_level"]),
			SurgeScore:  safeFloat(first(payload, "surge_score"), 0),
			TopicCount:  safeInt(first(payload, "topic_count"), len(topics)),
			Topics:      topics,
			Confidence:  safeFloat(first(payload, "confidence"), 0.5),
			Raw:         payload,
		}
	}
}

func normalizeBombora(payload map[string]any) Signal {
	topics := asTopics(payload["topics"])
	surge := safeFloat(first(payload, "surge_score", "intent_score"), 0)
	level := NormalizeLevel(payload["intent_level"])
	if level == "none" {
		switch {
		case surge >= 75:
			level = "high"
		case surge >= 45:
			level = "medium"
		case surge > 0:
			level = "low"
		}
	}
	return Signal{
		Provider:    "bombora",
		IntentLevel: level,
		SurgeScore:  surge,
		TopicCount:  safeInt(first(payload, "topic_count"), len(topics)),
		Topics:      topics,
		Confidence:  safeFloat(first(payload, "confidence"), 0.7),
		Raw:         payload,
	}
}

func normalizeSixSense(payload map[string]any) Signal {
	raw := payload["topics"]
	if raw == nil {
		raw = payload["keywords"]
	}
	topics := asTopics(raw)
	score := safeFloat(first(payload, "intent_score", "score"), 0)
	stage := strings.ToLower(toString(payload["buying_stage"]))
	level := NormalizeLevel(payload["intent_level"])
	if level == "none" {
		switch {
		case strings.Contains(stage, "decision") || score >= 80:
			level = "high"
		case strings.Contains(stage, "consider") || score >= 50:
			level = "medium"
		case score > 0:
			level = "low"
		}
	}
	return Signal{
		Provider:    "6sense",
		IntentLevel: level,
		SurgeScore:  score,
		TopicCount:  safeInt(first(payload, "topic_count"), len(topics)),
		Topics:      topics,
		Confidence:  safeFloat(first(payload, "confidence"), 0.7),
		BuyingStage: stage,
		Raw:         payload,
	}
}

// first returns the first present key's value, or nil when none are set.
func first(payload map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			return v
		}
	}
	return nil
}

func asTopics(raw any) []string {
	switch v := raw.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s := toString(item)
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t := strings.TrimSpace(v); t != "" {
			return []string{t}
		}
	}
	return []string{}
}

func safeFloat(value any, fallback float64) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func safeInt(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
