package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"fingerbench/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts is everything written under <baseDir>/<runID> for one
// recorded run.
type RunArtifacts struct {
	Run      model.RunRecord       `json:"run"`
	Episodes []model.EpisodeRecord `json:"episodes"`
	Summary  RewardSummary         `json:"summary"`
}

// RunIndexEntry is one line of the artifacts directory's run index.
type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Task         string  `json:"task"`
	Policy       string  `json:"policy"`
	Episodes     int     `json:"episodes"`
	Seed         uint64  `json:"seed"`
	MeanReward   float64 `json:"mean_reward"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// WriteRunArtifacts persists one run's records and refreshes the run index.
// It returns the run's artifacts directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}
	if err := writeEpisodesCSV(filepath.Join(runDir, "episodes.csv"), artifacts.Episodes); err != nil {
		return "", err
	}
	if err := appendRunIndex(baseDir, RunIndexEntry{
		RunID:        artifacts.Run.ID,
		Task:         artifacts.Run.Task,
		Policy:       artifacts.Run.Policy,
		Episodes:     artifacts.Run.Episodes,
		Seed:         artifacts.Run.Seed,
		MeanReward:   artifacts.Run.MeanReward,
		CreatedAtUTC: artifacts.Run.CreatedAtUTC,
	}); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRunIndex returns the run index, newest first.
func ReadRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}
	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAtUTC != entries[j].CreatedAtUTC {
			return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
		}
		return entries[i].RunID < entries[j].RunID
	})
	return entries, nil
}

func appendRunIndex(baseDir string, entry RunIndexEntry) error {
	entries, err := ReadRunIndex(baseDir)
	if err != nil {
		return err
	}
	replaced := false
	for i := range entries {
		if entries[i].RunID == entry.RunID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return writeJSON(filepath.Join(baseDir, runIndexFile), entries)
}

func writeEpisodesCSV(path string, episodes []model.EpisodeRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"index", "steps", "total_reward", "reward_steps", "target_angle", "target_x", "target_z"}); err != nil {
		return err
	}
	for _, episode := range episodes {
		row := []string{
			strconv.Itoa(episode.Index),
			strconv.Itoa(episode.Steps),
			formatFloat(episode.TotalReward),
			strconv.Itoa(episode.RewardSteps),
			"", "", "",
		}
		if episode.HasTarget {
			row[4] = formatFloat(episode.TargetAngle)
			row[5] = formatFloat(episode.TargetX)
			row[6] = formatFloat(episode.TargetZ)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
