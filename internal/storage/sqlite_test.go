//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fingerbench/internal/model"
)

func TestSQLiteStoreRunAndEpisodesRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fingerbench.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		CreatedAtUTC:    "2026-08-29T10:00:00Z",
		Task:            "spin",
		Policy:          "zero",
		Episodes:        2,
		BestReward:      412,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	episodes := []model.EpisodeRecord{
		{
			VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
			RunID:           "run-1",
			Index:           0,
			Steps:           1000,
			TotalReward:     400,
			RewardSteps:     400,
		},
		{
			VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
			RunID:           "run-1",
			Index:           1,
			Steps:           1000,
			TotalReward:     412,
			RewardSteps:     412,
		},
	}
	if err := store.SaveEpisodes(ctx, "run-1", episodes); err != nil {
		t.Fatalf("save episodes: %v", err)
	}

	gotRun, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || gotRun.BestReward != 412 {
		t.Fatalf("unexpected run: %+v", gotRun)
	}

	gotEpisodes, ok, err := store.GetEpisodes(ctx, "run-1")
	if err != nil {
		t.Fatalf("get episodes: %v", err)
	}
	if !ok || len(gotEpisodes) != 2 || gotEpisodes[1].TotalReward != 412 {
		t.Fatalf("unexpected episodes: %+v", gotEpisodes)
	}
}

func TestSQLiteStoreListRunsOrdering(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "fingerbench.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	for _, run := range []model.RunRecord{
		{VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}, ID: "run-old", CreatedAtUTC: "2026-08-28T09:00:00Z"},
		{VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}, ID: "run-new", CreatedAtUTC: "2026-08-29T09:00:00Z"},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-new" {
		t.Fatalf("unexpected run order: %+v", runs)
	}
}
