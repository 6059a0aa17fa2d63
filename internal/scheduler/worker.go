package scheduler

import (
	"context"
	"fmt"

	"telemarketing_backend/platform/config"
	"telemarketing_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ImportLookup tells whether a preview was committed.
type ImportLookup interface {
	Exists(ctx context.Context, importID uuid.UUID) (bool, error)
}

// ArchiveRemover deletes archived uploads.
type ArchiveRemover interface {
	DeleteObject(ctx context.Context, bucket, fileKey string) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	imports  ImportLookup
	archives ArchiveRemover
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, imports ImportLookup, archives ArchiveRemover, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(imports, archives, log)
	w.server = server
	return w, nil
}

func newWorker(imports ImportLookup, archives ArchiveRemover, log *logger.Logger) *Worker {
	w := &Worker{
		mux:      asynq.NewServeMux(),
		imports:  imports,
		archives: archives,
		log:      log,
	}
	w.mux.HandleFunc(TaskImportArchiveExpire, w.handleImportArchiveExpire)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleImportArchiveExpire(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseImportArchiveExpirePayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.ArchiveKey == "" || w.archives == nil {
		return nil
	}

	importID, err := uuid.Parse(payload.ImportID)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	committed, err := w.imports.Exists(ctx, importID)
	if err != nil {
		return err
	}
	if committed {
		return nil
	}

	if err := w.archives.DeleteObject(ctx, payload.Bucket, payload.ArchiveKey); err != nil {
		return err
	}
	w.log.ImportEvent("archive_expired", payload.ArchiveKey, "import_id", payload.ImportID, "tenant_id", payload.TenantID)
	return nil
}
