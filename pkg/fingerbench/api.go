// Package fingerbench is the embedding surface for the finger manipulation
// benchmark: construct a Client, drive recorded rollout runs against a task
// variant, and query stored results.
package fingerbench

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fingerbench/internal/model"
	"fingerbench/internal/stats"
	"fingerbench/internal/storage"
	"fingerbench/internal/task"
	"fingerbench/internal/taskid"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "fingerbench.db"
	defaultEpisodes     = 5
	defaultPolicy       = "zero"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store storage.Store

	artifactsDir string
}

type RunRequest struct {
	Task            string
	Policy          string
	Episodes        int
	Seed            uint64
	FrameSkip       int
	MaxEpisodeSteps int
	BasePath        string
	Diagnostics     bool
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Task         string
	Policy       string
	Episodes     int
	MeanReward   float64
	BestReward   float64
	SuccessRate  float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Task         string
	Policy       string
	Episodes     int
	Seed         uint64
	MeanReward   float64
}

type EpisodesRequest struct {
	RunID  string
	Latest bool
}

type EpisodeItem struct {
	Index       int
	Steps       int
	TotalReward float64
	RewardSteps int
	HasTarget   bool
	TargetAngle float64
}

type TaskSummaryItem struct {
	Name        string
	Description string
	BestReward  float64
}

type SpecField struct {
	Name       string
	Shape      int
	LowerBound float64
	UpperBound float64
}

type TaskSpec struct {
	Task        string
	Action      SpecField
	Discount    SpecField
	Observation []SpecField
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run drives one policy against one task instance for a number of episodes,
// persists the run, and writes the artifacts directory.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Task == "" {
		req.Task = task.DefaultTaskName
	}
	req.Task = taskid.Normalize(req.Task)
	if req.Policy == "" {
		req.Policy = defaultPolicy
	}
	if req.Episodes <= 0 {
		req.Episodes = defaultEpisodes
	}

	pol, err := policyFromName(req.Policy, req.Seed)
	if err != nil {
		return RunSummary{}, err
	}

	env, err := task.New(task.Config{
		TaskName:        req.Task,
		FrameSkip:       req.FrameSkip,
		MaxEpisodeSteps: req.MaxEpisodeSteps,
		BasePath:        req.BasePath,
		Seed:            req.Seed,
		Diagnostics:     req.Diagnostics,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := uuid.NewString()
	versions := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}

	episodes := make([]model.EpisodeRecord, 0, req.Episodes)
	totals := make([]float64, 0, req.Episodes)
	for i := 0; i < req.Episodes; i++ {
		if err := ctx.Err(); err != nil {
			return RunSummary{}, err
		}
		record, err := rollout(env, pol, i)
		if err != nil {
			return RunSummary{}, fmt.Errorf("episode %d: %w", i, err)
		}
		record.VersionedRecord = versions
		record.RunID = runID
		episodes = append(episodes, record)
		totals = append(totals, record.TotalReward)
	}

	summary := stats.SummarizeRewards(totals)
	run := model.RunRecord{
		VersionedRecord: versions,
		ID:              runID,
		CreatedAtUTC:    now.Format(time.RFC3339),
		Task:            req.Task,
		Policy:          req.Policy,
		Seed:            req.Seed,
		Episodes:        req.Episodes,
		FrameSkip:       env.FrameSkip(),
		MaxEpisodeSteps: env.MaxEpisodeSteps(),
		MeanReward:      summary.Mean,
		BestReward:      summary.Max,
		SuccessRate:     summary.SuccessRate,
	}

	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveEpisodes(ctx, runID, episodes); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveRewardHistory(ctx, runID, totals); err != nil {
		return RunSummary{}, err
	}
	if err := c.updateTaskSummary(ctx, env.Variant(), summary.Max, versions); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Run:      run,
		Episodes: episodes,
		Summary:  summary,
	})
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		Task:         req.Task,
		Policy:       req.Policy,
		Episodes:     req.Episodes,
		MeanReward:   summary.Mean,
		BestReward:   summary.Max,
		SuccessRate:  summary.SuccessRate,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}

	out := make([]RunItem, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunItem{
			RunID:        r.ID,
			CreatedAtUTC: r.CreatedAtUTC,
			Task:         r.Task,
			Policy:       r.Policy,
			Episodes:     r.Episodes,
			Seed:         r.Seed,
			MeanReward:   r.MeanReward,
		})
	}
	return out, nil
}

func (c *Client) Episodes(ctx context.Context, req EpisodesRequest) ([]EpisodeItem, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}

	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = runs[0].ID
	}
	if runID == "" {
		return nil, errors.New("episodes requires run id or latest")
	}

	episodes, ok, err := c.store.GetEpisodes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("episodes not found for run id: %s", runID)
	}

	out := make([]EpisodeItem, 0, len(episodes))
	for _, e := range episodes {
		out = append(out, EpisodeItem{
			Index:       e.Index,
			Steps:       e.Steps,
			TotalReward: e.TotalReward,
			RewardSteps: e.RewardSteps,
			HasTarget:   e.HasTarget,
			TargetAngle: e.TargetAngle,
		})
	}
	return out, nil
}

func (c *Client) TaskSummary(ctx context.Context, name string) (TaskSummaryItem, error) {
	if name == "" {
		return TaskSummaryItem{}, errors.New("task name is required")
	}
	name = taskid.Normalize(name)
	if _, err := task.ParseVariant(name); err != nil {
		return TaskSummaryItem{}, err
	}

	if err := c.store.Init(ctx); err != nil {
		return TaskSummaryItem{}, err
	}
	summary, ok, err := c.store.GetTaskSummary(ctx, name)
	if err != nil {
		return TaskSummaryItem{}, err
	}
	if !ok {
		return TaskSummaryItem{}, fmt.Errorf("task summary not found: %s", name)
	}
	return TaskSummaryItem{
		Name:        summary.Name,
		Description: summary.Description,
		BestReward:  summary.BestReward,
	}, nil
}

// Spec describes the action, discount, and observation layout of a task
// variant without constructing an engine.
func Spec(taskName string) (TaskSpec, error) {
	if taskName == "" {
		taskName = task.DefaultTaskName
	}
	taskName = taskid.Normalize(taskName)
	variant, err := task.ParseVariant(taskName)
	if err != nil {
		return TaskSpec{}, err
	}

	out := TaskSpec{
		Task:     variant.String(),
		Action:   specField("action", task.ActionSpec()),
		Discount: specField("discount", task.DiscountSpec()),
	}
	fields := task.ObservationSpec(variant)
	for _, name := range task.ObservationFieldOrder(variant) {
		out.Observation = append(out.Observation, specField(name, fields[name]))
	}
	return out, nil
}

func specField(name string, s task.Spec) SpecField {
	return SpecField{
		Name:       name,
		Shape:      s.Shape.Len(),
		LowerBound: s.LowerBound.AtVec(0),
		UpperBound: s.UpperBound.AtVec(0),
	}
}

func (c *Client) updateTaskSummary(ctx context.Context, variant task.Variant, best float64, versions model.VersionedRecord) error {
	name := variant.String()
	existing, ok, err := c.store.GetTaskSummary(ctx, name)
	if err != nil {
		return err
	}
	if ok && existing.BestReward >= best {
		return nil
	}
	return c.store.SaveTaskSummary(ctx, model.TaskSummary{
		VersionedRecord: versions,
		Name:            name,
		Description:     taskDescription(variant),
		BestReward:      best,
	})
}

func taskDescription(variant task.Variant) string {
	switch variant {
	case task.Spin:
		return "spin the free paddle past the velocity threshold"
	case task.TurnEasy:
		return "rotate the paddle tip into a wide target disc"
	case task.TurnHard:
		return "rotate the paddle tip into a narrow target disc"
	default:
		return ""
	}
}

// rollout runs one full episode and folds it into an EpisodeRecord.
func rollout(env *task.Finger, pol policy, index int) (model.EpisodeRecord, error) {
	obs, err := env.Reset()
	if err != nil {
		return model.EpisodeRecord{}, err
	}

	record := model.EpisodeRecord{Index: index}
	if target := env.Target(); target != nil {
		record.HasTarget = true
		record.TargetAngle = target.Angle
		record.TargetX = target.X
		record.TargetZ = target.Z
	}

	for step := 0; step < env.MaxEpisodeSteps(); step++ {
		obs, err = env.Step(pol.act(step, obs))
		if err != nil {
			return model.EpisodeRecord{}, err
		}
		record.Steps++
		record.TotalReward += obs.Reward
		if obs.Reward > 0 {
			record.RewardSteps++
		}
		if env.IsEpisodeTerminal() {
			break
		}
	}
	return record, nil
}
