package experiment

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/tabular/qlearning"
	"github.com/samuelfneumann/rllab/environment/lineworld"
	"github.com/samuelfneumann/rllab/experiment/checkpointer"
	"github.com/samuelfneumann/rllab/experiment/tracker"
)

func lineQLearning(t *testing.T, episodes int) Config {
	c, err := NewConfig("lineworld", "qlearning", episodes)
	require.NoError(t, err)
	return c
}

func TestRunTrainsAndEvaluates(t *testing.T) {
	c := lineQLearning(t, 1000)
	filename := filepath.Join(t.TempDir(), "returns.bin")
	returns := tracker.NewReturn(filename)
	exp, err := c.CreateExp(42, nil, returns)
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Loaded)
	assert.Equal(t, uint64(42), result.Seed)
	assert.Len(t, result.Returns, 1000)
	assert.Equal(t, lineworld.WinScore, result.Greedy)
	assert.Equal(t, result.Returns, returns.Data())

	require.NoError(t, exp.Save())
	saved, err := tracker.LoadData(filename)
	require.NoError(t, err)
	assert.Equal(t, result.Returns, saved)
}

func TestRunPlanningWithoutEpisodes(t *testing.T) {
	c, err := NewConfig("lineworld", "valueiteration", 0)
	require.NoError(t, err)
	exp, err := c.CreateExp(0, nil)
	require.NoError(t, err)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Returns)
	assert.Equal(t, 0.0, result.MeanReturn())
	assert.Equal(t, lineworld.WinScore, result.Greedy)
}

func TestRunLoadsSnapshot(t *testing.T) {
	store := checkpointer.NewFileStore(t.TempDir())
	c := lineQLearning(t, 200)

	first, err := c.CreateExp(1, store)
	require.NoError(t, err)
	trained, err := first.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, trained.Loaded)

	key := Key(first.Env(), agent.QLearning)
	assert.Equal(t, "LineWorld5/QLearning", key)
	_, err = os.Stat(store.Path(key))
	require.NoError(t, err)

	second, err := c.CreateExp(1, store)
	require.NoError(t, err)
	loaded, err := second.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Loaded)
	assert.Empty(t, loaded.Returns)
	assert.Equal(t, trained.Greedy, loaded.Greedy)

	q1 := first.Agent().(*qlearning.QLearning).QTable()
	q2 := second.Agent().(*qlearning.QLearning).QTable()
	assert.Equal(t, q1.RawMatrix().Data, q2.RawMatrix().Data)
}

type countingStore struct {
	checkpointer.Store
	saves []int
}

func (c *countingStore) Save(ctx context.Context, key string,
	obj checkpointer.Serializable) error {
	c.saves = append(c.saves, len(c.saves))
	return c.Store.Save(ctx, key, obj)
}

func TestRunCheckpoints(t *testing.T) {
	store := &countingStore{Store: checkpointer.NewFileStore(t.TempDir())}
	c := lineQLearning(t, 250)
	c.Checkpoint = 100
	returns := tracker.NewReturn("unused")

	exp, err := c.CreateExp(3, store, returns)
	require.NoError(t, err)
	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Returns, 250)
	assert.Len(t, returns.Data(), 250)

	// Saved after episodes 100 and 200, then once training finished
	assert.Len(t, store.saves, 3)
}

func TestConfigJSON(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "exp.json")
	data := `{
		"Env": {"Environment": "gridworld", "Rows": 3, "Cols": 3},
		"Agent": {"Type": "qlearning", "Config": {"Alpha": 0.5}},
		"Episodes": 50,
		"Runs": 2,
		"Seed": 7
	}`
	require.NoError(t, os.WriteFile(filename, []byte(data), 0o644))

	c, err := LoadConfig(filename)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, agent.QLearning, c.Agent.Type)

	config := c.Agent.Config.(qlearning.Config)
	assert.Equal(t, 0.5, config.Alpha)
	assert.Equal(t, 0.1, config.Epsilon)
	assert.Equal(t, 2, c.Runs)

	exp, err := c.CreateExp(c.Seed, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, exp.Env().NumStates())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Episodes: 1}.Validate())

	c := lineQLearning(t, 10)
	c.Episodes = -1
	assert.Error(t, c.Validate())

	c = lineQLearning(t, 10)
	c.Agent.Config = qlearning.Config{Alpha: 2}
	assert.Error(t, c.Validate())

	_, err := NewConfig("lineworld", "nosuchagent", 1)
	assert.Error(t, err)

	c = lineQLearning(t, 10)
	c.Env.Environment = "nosuchenv"
	_, err = c.CreateExp(0, nil)
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	c := lineQLearning(t, 100)
	c.Runs = 3
	c.Seed = 10

	var progress bytes.Buffer
	results, err := Sweep(context.Background(), c, &progress)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, uint64(10+i), r.Seed)
		assert.Len(t, r.Returns, 100)
	}
	assert.Contains(t, progress.String(), "100.00%")

	summary := Summarize(results)
	assert.Equal(t, 3, summary.Runs)
	assert.True(t, strings.HasPrefix(summary.String(), "Runs: 3"))
	assert.Len(t, MeanCurve(results), 100)
}

func TestSweepCancelled(t *testing.T) {
	c := lineQLearning(t, 10)
	c.Runs = 5

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Sweep(ctx, c, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Returns: []float64{1, 3}, Greedy: 1},
		{Returns: []float64{3, 5, 7}, Greedy: 1},
	}

	s := Summarize(results)
	assert.InDelta(t, 3.5, s.MeanReturn, 1e-12)
	assert.InDelta(t, math.Sqrt(4.5), s.StdReturn, 1e-12)
	assert.Equal(t, 1.0, s.MeanGreedy)
	assert.Equal(t, 0.0, s.StdGreedy)

	assert.Equal(t, []float64{2, 4, 7}, MeanCurve(results))

	single := Summarize(results[:1])
	assert.Equal(t, 2.0, single.MeanReturn)
	assert.Equal(t, 0.0, single.StdReturn)
	assert.Equal(t, Summary{}, Summarize(nil))
}

// cancelAt cancels a context once an episode has been tracked
type cancelAt struct {
	episode int
	cancel  context.CancelFunc
}

func (c cancelAt) Track(episode int, _ float64) {
	if episode == c.episode {
		c.cancel()
	}
}

func (c cancelAt) Save() error { return nil }

func TestRunResumesUnfinished(t *testing.T) {
	store := checkpointer.NewFileStore(t.TempDir())
	c := lineQLearning(t, 100)
	c.Checkpoint = 10

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupted, err := c.CreateExp(5, store, cancelAt{9, cancel})
	require.NoError(t, err)
	_, err = interrupted.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	key := Key(interrupted.Env(), agent.QLearning)
	_, err = os.Stat(store.Path(key))
	assert.True(t, os.IsNotExist(err), "unfinished run saved as finished")
	_, err = os.Stat(store.Path(checkpointer.PartialKey(key)))
	require.NoError(t, err)

	resumed, err := c.CreateExp(5, store)
	require.NoError(t, err)
	result, err := resumed.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Loaded)
	assert.Equal(t, 10, result.Resumed)
	assert.Len(t, result.Returns, 90)

	_, err = os.Stat(store.Path(key))
	assert.NoError(t, err)
	_, err = os.Stat(store.Path(checkpointer.PartialKey(key)))
	assert.True(t, os.IsNotExist(err))

	// Resuming trains exactly as an uninterrupted run does
	whole, err := c.CreateExp(5, checkpointer.NewFileStore(t.TempDir()))
	require.NoError(t, err)
	full, err := whole.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, full.Returns[10:], result.Returns)
	q1 := whole.Agent().(*qlearning.QLearning).QTable()
	q2 := resumed.Agent().(*qlearning.QLearning).QTable()
	assert.True(t, mat.Equal(q1, q2))

	again, err := c.CreateExp(5, store)
	require.NoError(t, err)
	loaded, err := again.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Loaded)
}

func TestRunIgnoresSnapshotOfOtherDims(t *testing.T) {
	store := checkpointer.NewFileStore(t.TempDir())
	small := lineQLearning(t, 200)
	first, err := small.CreateExp(1, store)
	require.NoError(t, err)
	_, err = first.Run(context.Background())
	require.NoError(t, err)

	large := lineQLearning(t, 200)
	large.Env.Cells = 9
	exp, err := large.CreateExp(1, store)
	require.NoError(t, err)
	key := Key(exp.Env(), agent.QLearning)
	assert.Equal(t, "LineWorld9/QLearning", key)
	assert.NotEqual(t, Key(first.Env(), agent.QLearning), key)

	// A 5 cell snapshot stored under the 9 cell key is not used
	serial := first.Agent().(checkpointer.Serializable)
	require.NoError(t, store.Save(context.Background(), key, serial))

	result, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Loaded)
	assert.Len(t, result.Returns, 200)
	rows, cols := exp.Agent().(*qlearning.QLearning).QTable().Dims()
	assert.Equal(t, []int{9, 2}, []int{rows, cols})

	// The retrained agent replaced the snapshot
	again, err := large.CreateExp(1, store)
	require.NoError(t, err)
	loaded, err := again.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Loaded)
}

func gridConfig(t *testing.T, episodes int) Config {
	c := lineQLearning(t, episodes)
	grid := qlearning.NewConfigList(
		[]float64{0.1, 0.5}, []float64{0.1}, []float64{0.99}, []int{1000},
		[]float64{0},
	)
	c.Grid = &grid
	return c
}

func TestConfigAt(t *testing.T) {
	c := gridConfig(t, 10)
	c.Agent = agent.TypedConfig{}
	require.NoError(t, c.Validate())
	_, err := c.CreateExp(0, nil)
	assert.Error(t, err)

	point, err := c.At(1)
	require.NoError(t, err)
	assert.Nil(t, point.Grid)
	assert.Equal(t, 0.5, point.Agent.Config.(qlearning.Config).Alpha)
	_, err = point.CreateExp(0, nil)
	assert.NoError(t, err)

	_, err = c.At(2)
	assert.Error(t, err)
	_, err = lineQLearning(t, 10).At(0)
	assert.Error(t, err)

	empty := qlearning.NewConfigList(nil, nil, nil, nil, nil)
	c.Grid = &empty
	assert.Error(t, c.Validate())
}

func TestConfigGridJSON(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "grid.json")
	data := `{
		"Env": {"Environment": "lineworld"},
		"Grid": {"Type": "sarsa", "ConfigList": {"Epsilon": [0.05, 0.2]}},
		"Episodes": 20
	}`
	require.NoError(t, os.WriteFile(filename, []byte(data), 0o644))

	c, err := LoadConfig(filename)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, agent.SARSA, c.Grid.Type)
	assert.Equal(t, 2, c.Grid.Len())

	point, err := c.At(1)
	require.NoError(t, err)
	assert.Equal(t, agent.SARSA, point.Agent.Type)
	def, err := agent.Default(agent.SARSA)
	require.NoError(t, err)
	assert.NotEqual(t, def, point.Agent.Config)
}

func TestSweepGrid(t *testing.T) {
	c := gridConfig(t, 50)
	c.Runs = 2

	var progress bytes.Buffer
	grid, err := SweepGrid(context.Background(), c, &progress)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	for i, g := range grid {
		assert.Equal(t, i, g.Index)
		assert.Len(t, g.Results, 2)
		assert.Equal(t, 2, g.Summary().Runs)
	}
	assert.Equal(t, 0.1, grid[0].Agent.(qlearning.Config).Alpha)
	assert.Equal(t, 0.5, grid[1].Agent.(qlearning.Config).Alpha)
	assert.Contains(t, progress.String(), "100.00%")

	best, ok := Best(grid)
	require.True(t, ok)
	for _, g := range grid {
		assert.GreaterOrEqual(t, best.Summary().MeanReturn,
			g.Summary().MeanReturn)
	}
	_, ok = Best(nil)
	assert.False(t, ok)

	_, err = SweepGrid(context.Background(), lineQLearning(t, 1), nil)
	assert.Error(t, err)
}
