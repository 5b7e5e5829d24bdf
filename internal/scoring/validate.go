package scoring

import (
	"strings"

	"github.com/rotisserie/eris"
)

var requiredSections = []string{
	"icp_weights",
	"heat_weights",
	"thresholds",
	"tier_cutoffs",
	"caps",
	"rules",
}

var requiredMappings = [][]string{
	{"rules", "fit"},
	{"rules", "pain"},
	{"rules", "digital"},
	{"rules", "urgency"},
	{"rules", "timing"},
	{"rules", "heat"},
	{"rules", "actions"},
	{"rules", "actions", "tier"},
	{"rules", "actions", "heat"},
}

// requiredNumericPaths is the versioned schema of scalar weights and
// thresholds. Adding a scoring dimension means adding its path here.
var requiredNumericPaths = [][]string{
	{"thresholds", "qualification_min_score"},
	{"thresholds", "heat_hot_min"},
	{"thresholds", "heat_warm_min"},
	{"tier_cutoffs", "tier_a"},
	{"tier_cutoffs", "tier_b"},
	{"tier_cutoffs", "tier_c"},
	{"caps", "fit"},
	{"caps", "pain"},
	{"caps", "digital"},
	{"caps", "access_urgency"},
	{"caps", "email_engagement"},
	{"caps", "site_reply"},
	{"caps", "timing"},
	{"caps", "total_icp"},
	{"caps", "total_heat"},
	{"icp_weights", "fit", "prac_2_5"},
	{"icp_weights", "fit", "medical_industry"},
	{"icp_weights", "fit", "location_priority"},
	{"icp_weights", "fit", "admin_present"},
	{"icp_weights", "fit", "solo_penalty"},
	{"icp_weights", "fit", "group_10_penalty"},
	{"icp_weights", "pain", "high_friction"},
	{"icp_weights", "pain", "vague_booking"},
	{"icp_weights", "pain", "no_faq"},
	{"icp_weights", "pain", "missing_essentials"},
	{"icp_weights", "pain", "surcharge_signals"},
	{"icp_weights", "digital", "bad_mobile"},
	{"icp_weights", "digital", "no_fold_cta"},
	{"icp_weights", "digital", "weak_contact"},
	{"icp_weights", "access", "direct_email"},
	{"icp_weights", "urgency", "recent_post"},
	{"heat_weights", "email", "open"},
	{"heat_weights", "email", "click"},
	{"heat_weights", "email", "double_open"},
	{"heat_weights", "email", "forward"},
	{"heat_weights", "site", "pricing_page"},
	{"heat_weights", "site", "return_visit"},
	{"heat_weights", "reply", "curiosity"},
	{"heat_weights", "timing", "within_24h"},
	{"heat_weights", "timing", "within_48h"},
	{"heat_weights", "intent", "high"},
	{"heat_weights", "intent", "medium"},
	{"heat_weights", "intent", "low"},
}

// validateDocument checks the raw YAML tree for presence and type of every
// required path. It reports the first violation; partial configs are never
// accepted, so the loader is expected to be re-run until no error remains.
func validateDocument(doc map[string]any) error {
	for _, section := range requiredSections {
		if _, ok := doc[section]; !ok {
			return eris.Wrapf(ErrConfig, "missing required section: %s", section)
		}
		if _, ok := doc[section].(map[string]any); !ok {
			return eris.Wrapf(ErrConfig, "section must be a mapping: %s", section)
		}
	}

	for _, path := range requiredMappings {
		value, err := lookupPath(doc, path)
		if err != nil {
			return err
		}
		if _, ok := value.(map[string]any); !ok {
			return eris.Wrapf(ErrConfig, "key must be a mapping: %s", strings.Join(path, "."))
		}
	}

	for _, path := range requiredNumericPaths {
		value, err := lookupPath(doc, path)
		if err != nil {
			return err
		}
		if !isNumeric(value) {
			return eris.Wrapf(ErrConfig, "key must be numeric: %s", strings.Join(path, "."))
		}
	}

	return nil
}

func lookupPath(doc map[string]any, path []string) (any, error) {
	var current any = doc
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, eris.Wrapf(ErrConfig, "missing required key: %s", strings.Join(path, "."))
		}
		current, ok = m[key]
		if !ok {
			return nil, eris.Wrapf(ErrConfig, "missing required key: %s", strings.Join(path, "."))
		}
	}
	return current, nil
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int64, float64:
		return true
	default:
		return false
	}
}
