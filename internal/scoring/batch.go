package scoring

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/funnel-cli/internal/model"
)

// ErrData marks a lead whose shape cannot be scored. During bulk rescoring
// such leads are counted and skipped; they never abort the batch.
var ErrData = eris.New("scoring: malformed lead")

// BatchResult summarizes a bulk rescore run.
type BatchResult struct {
	Scored int
	Failed int
}

// SaveFunc persists a freshly scored lead.
type SaveFunc func(ctx context.Context, lead *model.Lead) error

// RescoreAll rescores every lead with the engine's current config and hands
// each result to save. Individual failures are logged and counted; the batch
// keeps going. Concurrency is bounded and saves are paced so a large rescore
// does not stampede the store.
func (e *Engine) RescoreAll(ctx context.Context, leads []*model.Lead, concurrency int, perSecond float64, save SaveFunc) (BatchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)
	if perSecond <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	var scored, failed atomic.Int64
	now := time.Now().UTC()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, l := range leads {
		i, l := i, l
		g.Go(func() error {
			if err := e.rescoreOne(ctx, l, now, limiter, save); err != nil {
				failed.Add(1)
				zap.L().Warn("rescore failed",
					zap.Int("index", i),
					zap.String("lead_id", leadID(l)),
					zap.Error(err))
				return nil
			}
			scored.Add(1)
			return nil
		})
	}

	err := g.Wait()
	res := BatchResult{Scored: int(scored.Load()), Failed: int(failed.Load())}
	zap.L().Info("bulk rescore finished",
		zap.Int("scored", res.Scored),
		zap.Int("failed", res.Failed))
	return res, err
}

func (e *Engine) rescoreOne(ctx context.Context, l *model.Lead, now time.Time, limiter *rate.Limiter, save SaveFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Wrapf(ErrData, "panic while scoring: %v", r)
		}
	}()

	if l == nil || l.ID == "" {
		return eris.Wrap(ErrData, "lead missing id")
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "rescore canceled")
	}

	e.ScoreLeadAt(l, now)

	if save == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}
	if err := save(ctx, l); err != nil {
		return eris.Wrapf(err, "save lead %s", l.ID)
	}
	return nil
}

func leadID(l *model.Lead) string {
	if l == nil {
		return ""
	}
	return l.ID
}
