package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"telemarketing_backend/internal/imports/ingest"
	"telemarketing_backend/internal/imports/repository"
	"telemarketing_backend/platform/config"
	"telemarketing_backend/platform/db"
	"telemarketing_backend/platform/logger"
	"telemarketing_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type commitOptions struct {
	tenant  string
	user    string
	migrate bool
}

func newCommitCmd(root *rootOptions) *cobra.Command {
	var opts commitOptions

	cmd := &cobra.Command{
		Use:   "commit <file>",
		Short: "Import every lead of a spreadsheet for one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, userID, err := opts.ids()
			if err != nil {
				return err
			}

			result, err := root.parseFile(args[0])
			if err != nil {
				return err
			}
			// Nothing to write: fail before touching the database.
			if len(result.Leads) == 0 {
				return ingest.ErrEmptyBatch
			}

			cfg := config.LoadForCLI()
			if cfg.GetDatabaseURL() == "" {
				return fmt.Errorf("DATABASE_URL is required for commit")
			}
			log := logger.New(cfg.Env)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg, db.WithAppName("lead-import"), db.WithMaxConns(2))
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			if opts.migrate {
				if err := db.RunMigrations(ctx, pool); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
			}

			fileName := sanitize.FileName(filepath.Base(args[0]))
			record := repository.Import{
				ID:        uuid.New(),
				CompanyID: tenantID,
				UserID:    userID,
				FileName:  fileName,
				Strategy:  result.Strategy,
				DataStart: result.DataStart,
			}

			inserted, err := ingest.Commit(ctx, repository.New(pool).ForImport(record), tenantID, result.Leads)
			if err != nil {
				log.ImportEvent("commit_failed", fileName, "import_id", record.ID.String(), "error", err)
				return err
			}
			log.ImportEvent("committed", fileName, "import_id", record.ID.String(), "inserted", inserted)

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d leads (import %s)\n", inserted, record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "Company UUID the leads belong to (required)")
	cmd.Flags().StringVar(&opts.user, "user", "", "User UUID recorded on the import (default: none)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Apply pending database migrations first")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func (o commitOptions) ids() (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(strings.TrimSpace(o.tenant))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --tenant: %w", err)
	}
	if tenantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --tenant: nil uuid")
	}

	userID := uuid.Nil
	if strings.TrimSpace(o.user) != "" {
		userID, err = uuid.Parse(strings.TrimSpace(o.user))
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --user: %w", err)
		}
	}
	return tenantID, userID, nil
}
