package storage

import (
	"encoding/json"
	"errors"

	"fingerbench/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeEpisodes(episodes []model.EpisodeRecord) ([]byte, error) {
	return json.Marshal(episodes)
}

func DecodeEpisodes(data []byte) ([]model.EpisodeRecord, error) {
	var episodes []model.EpisodeRecord
	if err := json.Unmarshal(data, &episodes); err != nil {
		return nil, err
	}
	for _, episode := range episodes {
		if err := checkVersion(episode.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return episodes, nil
}

func EncodeTaskSummary(s model.TaskSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeTaskSummary(data []byte) (model.TaskSummary, error) {
	var summary model.TaskSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.TaskSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.TaskSummary{}, err
	}
	return summary, nil
}

func EncodeRewardHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeRewardHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
