package storage

import (
	"encoding/json"
	"errors"

	"kybernetes/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRunSummary(s model.RunSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeRunSummary(data []byte) (model.RunSummary, error) {
	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return summary, nil
}

func EncodeBaseline(b model.BaselineRecord) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBaseline(data []byte) (model.BaselineRecord, error) {
	var baseline model.BaselineRecord
	if err := json.Unmarshal(data, &baseline); err != nil {
		return model.BaselineRecord{}, err
	}
	if err := checkVersion(baseline.VersionedRecord); err != nil {
		return model.BaselineRecord{}, err
	}
	return baseline, nil
}

func EncodeGenerationHistory(records []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeGenerationHistory(data []byte) ([]model.GenerationRecord, error) {
	var records []model.GenerationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func EncodeResetEvents(events []model.ResetEvent) ([]byte, error) {
	return json.Marshal(events)
}

func DecodeResetEvents(data []byte) ([]model.ResetEvent, error) {
	var events []model.ResetEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion > CurrentSchemaVersion || record.CodecVersion > CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Stamp sets the current schema and codec version on a record.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}
