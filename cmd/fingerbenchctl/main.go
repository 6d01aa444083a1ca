package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"fingerbench/internal/storage"
	benchapi "fingerbench/pkg/fingerbench"
)

const artifactsDir = "artifacts"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "episodes":
		return runEpisodes(ctx, args[1:])
	case "task-summary":
		return runTaskSummary(ctx, args[1:])
	case "spec":
		return runSpec(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s (expected one of: init, run, runs, episodes, task-summary, spec)", msg)
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fingerbench.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := benchapi.New(benchapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	taskName := fs.String("task", "spin", "task variant: spin|turn_easy|turn_hard")
	policyName := fs.String("policy", "zero", "rollout policy: zero|random|swirl")
	episodes := fs.Int("episodes", 5, "episode count")
	seed := fs.Uint64("seed", 1, "rng seed")
	frameSkip := fs.Int("frame-skip", 0, "physics sub-steps per control step (0 uses the task default)")
	maxSteps := fs.Int("max-steps", 0, "steps per episode (0 uses the task default)")
	basePath := fs.String("base-path", "", "scene description directory (empty uses the built-in scene)")
	diagnostics := fs.Bool("diagnostics", false, "record initial joint configuration and committed target")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fingerbench.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = benchapi.RunRequest{
			Task:            *taskName,
			Policy:          *policyName,
			Episodes:        *episodes,
			Seed:            *seed,
			FrameSkip:       *frameSkip,
			MaxEpisodeSteps: *maxSteps,
			BasePath:        *basePath,
			Diagnostics:     *diagnostics,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"task":        *taskName,
			"policy":      *policyName,
			"episodes":    *episodes,
			"seed":        *seed,
			"frame-skip":  *frameSkip,
			"max-steps":   *maxSteps,
			"base-path":   *basePath,
			"diagnostics": *diagnostics,
		})
	}

	client, err := benchapi.New(benchapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s task=%s policy=%s episodes=%d seed=%d\n",
		summary.RunID, summary.Task, summary.Policy, summary.Episodes, req.Seed)
	fmt.Printf("mean_reward=%.6f best_reward=%.6f success_rate=%.4f\n",
		summary.MeanReward, summary.BestReward, summary.SuccessRate)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fingerbench.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := benchapi.New(benchapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, benchapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created_at=%s task=%s policy=%s episodes=%d seed=%d mean_reward=%.6f\n",
			r.RunID, r.CreatedAtUTC, r.Task, r.Policy, r.Episodes, r.Seed, r.MeanReward)
	}
	return nil
}

func runEpisodes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("episodes", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show episodes for the most recent run")
	jsonOut := fs.Bool("json", false, "emit episodes as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fingerbench.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("episodes requires --run-id or --latest")
	}

	client, err := benchapi.New(benchapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	episodes, err := client.Episodes(ctx, benchapi.EpisodesRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		fmt.Println("no episodes")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(episodes)
	}

	for _, e := range episodes {
		if e.HasTarget {
			fmt.Printf("episode=%d steps=%d total_reward=%.6f reward_steps=%d target_angle=%.4f\n",
				e.Index, e.Steps, e.TotalReward, e.RewardSteps, e.TargetAngle)
			continue
		}
		fmt.Printf("episode=%d steps=%d total_reward=%.6f reward_steps=%d\n",
			e.Index, e.Steps, e.TotalReward, e.RewardSteps)
	}
	return nil
}

func runTaskSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("task-summary", flag.ContinueOnError)
	taskName := fs.String("task", "", "task variant name")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fingerbench.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *taskName == "" {
		return errors.New("task-summary requires --task")
	}

	client, err := benchapi.New(benchapi.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: artifactsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.TaskSummary(ctx, *taskName)
	if err != nil {
		return err
	}
	fmt.Printf("task=%s best_reward=%.6f description=%s\n",
		summary.Name, summary.BestReward, summary.Description)
	return nil
}

func runSpec(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("spec", flag.ContinueOnError)
	taskName := fs.String("task", "spin", "task variant name")
	jsonOut := fs.Bool("json", false, "emit spec as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	spec, err := benchapi.Spec(*taskName)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(spec)
	}

	fmt.Printf("task=%s\n", spec.Task)
	fmt.Printf("action shape=%d bounds=[%g, %g]\n", spec.Action.Shape, spec.Action.LowerBound, spec.Action.UpperBound)
	fmt.Printf("discount shape=%d bounds=[%g, %g]\n", spec.Discount.Shape, spec.Discount.LowerBound, spec.Discount.UpperBound)
	for _, field := range spec.Observation {
		fmt.Printf("observation field=%s shape=%d bounds=[%g, %g]\n", field.Name, field.Shape, field.LowerBound, field.UpperBound)
	}
	return nil
}
