package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskImportArchiveExpire removes the archived upload of a preview that was
// never committed.
const TaskImportArchiveExpire = "imports.archive.expire"

type ImportArchiveExpirePayload struct {
	ImportID   string `json:"importId"`
	TenantID   string `json:"tenantId"`
	Bucket     string `json:"bucket"`
	ArchiveKey string `json:"archiveKey"`
}

func NewImportArchiveExpireTask(payload ImportArchiveExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImportArchiveExpire, data, asynq.MaxRetry(5)), nil
}

func ParseImportArchiveExpirePayload(task *asynq.Task) (ImportArchiveExpirePayload, error) {
	var payload ImportArchiveExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ImportArchiveExpirePayload{}, err
	}
	return payload, nil
}
