package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one recorded rollout run: a fixed policy driven
// against one task instance for a number of episodes.
type RunRecord struct {
	VersionedRecord
	ID              string  `json:"id"`
	CreatedAtUTC    string  `json:"created_at_utc"`
	Task            string  `json:"task"`
	Policy          string  `json:"policy"`
	Seed            uint64  `json:"seed"`
	Episodes        int     `json:"episodes"`
	FrameSkip       int     `json:"frame_skip"`
	MaxEpisodeSteps int     `json:"max_episode_steps"`
	MeanReward      float64 `json:"mean_reward"`
	BestReward      float64 `json:"best_reward"`
	SuccessRate     float64 `json:"success_rate"`
}

// EpisodeRecord is the per-episode detail behind a RunRecord.
type EpisodeRecord struct {
	VersionedRecord
	RunID       string  `json:"run_id"`
	Index       int     `json:"index"`
	Steps       int     `json:"steps"`
	TotalReward float64 `json:"total_reward"`
	RewardSteps int     `json:"reward_steps"`
	// Committed target for the episode, meaningful only when HasTarget is
	// set (turn variants).
	HasTarget   bool    `json:"has_target"`
	TargetAngle float64 `json:"target_angle,omitempty"`
	TargetX     float64 `json:"target_x,omitempty"`
	TargetZ     float64 `json:"target_z,omitempty"`
}

// TaskSummary tracks the best recorded result per task variant.
type TaskSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestReward  float64 `json:"best_reward"`
}
