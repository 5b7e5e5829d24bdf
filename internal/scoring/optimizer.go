package scoring

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/funnel-cli/internal/model"
)

// Optimizer nudges pain weights toward features that correlate with closed
// deals. It owns its config copy; a running engine is unaffected until it is
// rebuilt from the rewritten file.
type Optimizer struct {
	path string
	cfg  *Config
}

// NewOptimizer loads the config at path for adjustment. An empty path uses
// the built-in defaults and disables persistence.
func NewOptimizer(path string) (*Optimizer, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Optimizer{path: path, cfg: cfg}, nil
}

// painFeature pairs a pain feature name with its weight slot so the learner
// can walk the section without reflection.
type painFeature struct {
	name   string
	weight *float64
}

func (o *Optimizer) painFeatures() []painFeature {
	p := &o.cfg.ICPWeights.Pain
	return []painFeature{
		{"high_friction", &p.HighFriction},
		{"vague_booking", &p.VagueBooking},
		{"no_faq", &p.NoFAQ},
		{"missing_essentials", &p.MissingEssentials},
		{"surcharge_signals", &p.SurchargeSignals},
	}
}

// LearnFromOutcomes compares how often each pain feature fired in closed
// versus lost deals and moves the feature's weight one point toward the
// winning side. Without at least one closed lead there is nothing to learn
// from and the config is left untouched. The returned map records the applied
// adjustments as "+1" or "-1" per feature.
func (o *Optimizer) LearnFromOutcomes(historical []*model.Lead) (map[string]string, error) {
	var closed, lost []*model.Lead
	for _, l := range historical {
		switch l.Outcome {
		case model.LeadOutcomeClosed:
			closed = append(closed, l)
		case model.LeadOutcomeLost:
			lost = append(lost, l)
		}
	}
	if len(closed) == 0 {
		zap.L().Info("weight learning skipped, no closed deals in sample",
			zap.Int("sample_size", len(historical)))
		return nil, nil
	}

	adjustments := make(map[string]string)
	for _, f := range o.painFeatures() {
		key := "pain_" + f.name
		closeCount := countWithBreakdown(closed, key)
		lostCount := countWithBreakdown(lost, key)
		switch {
		case closeCount > lostCount:
			*f.weight++
			adjustments[f.name] = "+1"
		case lostCount > closeCount:
			*f.weight--
			adjustments[f.name] = "-1"
		}
	}

	if err := o.persist(); err != nil {
		return nil, err
	}
	zap.L().Info("pain weights adjusted",
		zap.Int("closed", len(closed)),
		zap.Int("lost", len(lost)),
		zap.Any("adjustments", adjustments))
	return adjustments, nil
}

// Config exposes the adjusted configuration, mainly for tests and for
// rebuilding an engine in-process after a learning pass.
func (o *Optimizer) Config() *Config {
	return o.cfg
}

func (o *Optimizer) persist() error {
	if o.path == "" {
		return nil
	}
	out, err := yaml.Marshal(o.cfg)
	if err != nil {
		return eris.Wrapf(ErrConfig, "encode scoring config: %v", err)
	}
	if err := os.WriteFile(o.path, out, 0o644); err != nil {
		return eris.Wrapf(ErrConfig, "write scoring config %s: %v", o.path, err)
	}
	return nil
}

func countWithBreakdown(leads []*model.Lead, key string) int {
	n := 0
	for _, l := range leads {
		if l.Score == nil {
			continue
		}
		if _, ok := l.Score.ICPBreakdown[key]; ok {
			n++
		}
	}
	return n
}
