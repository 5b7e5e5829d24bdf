package scoring

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/funnel-cli/internal/model"
)

func TestRescoreAllScoresEveryLead(t *testing.T) {
	engine := newTestEngine(t)

	leads := []*model.Lead{
		{ID: "l1", Company: model.Company{SizeRange: "2-5"}},
		{ID: "l2", Company: model.Company{Industry: "physio"}},
		{ID: "l3"},
	}

	var mu sync.Mutex
	saved := map[string]bool{}
	save := func(_ context.Context, l *model.Lead) error {
		mu.Lock()
		defer mu.Unlock()
		saved[l.ID] = true
		return nil
	}

	res, err := engine.RescoreAll(context.Background(), leads, 4, 0, save)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scored)
	assert.Equal(t, 0, res.Failed)
	assert.Len(t, saved, 3)

	for _, l := range leads {
		require.NotNil(t, l.Score)
		assert.NotEmpty(t, l.Score.Tier)
	}
}

func TestRescoreAllCountsBadLeadsWithoutAborting(t *testing.T) {
	engine := newTestEngine(t)

	leads := []*model.Lead{
		{ID: "good"},
		nil,
		{ID: ""},
	}

	res, err := engine.RescoreAll(context.Background(), leads, 2, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scored)
	assert.Equal(t, 2, res.Failed)
}

func TestRescoreAllCountsSaveFailures(t *testing.T) {
	engine := newTestEngine(t)

	leads := []*model.Lead{{ID: "l1"}, {ID: "l2"}}
	boom := eris.New("store down")
	save := func(_ context.Context, l *model.Lead) error {
		if l.ID == "l2" {
			return boom
		}
		return nil
	}

	res, err := engine.RescoreAll(context.Background(), leads, 1, 0, save)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scored)
	assert.Equal(t, 1, res.Failed)
	// The failed lead was still scored in memory before the save attempt.
	require.NotNil(t, leads[1].Score)
}

func TestRescoreAllCanceledContext(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	leads := []*model.Lead{{ID: "l1"}, {ID: "l2"}}
	res, err := engine.RescoreAll(ctx, leads, 2, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Scored)
	assert.Equal(t, 2, res.Failed)
}

func TestRescoreAllNilSaveSkipsPersistence(t *testing.T) {
	engine := newTestEngine(t)
	leads := []*model.Lead{{ID: "l1"}}

	res, err := engine.RescoreAll(context.Background(), leads, 0, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scored)
	require.NotNil(t, leads[0].Score)
}
