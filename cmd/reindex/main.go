// Command reindex rebuilds case index namespaces from the database, for
// example after switching search backends or losing the Elasticsearch volume.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lexcase-backend/config"
	"lexcase-backend/repository"
	"lexcase-backend/search"
	"lexcase-backend/service"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "reindex",
	Short:         "Rebuild case search indexes from the database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var caseCmd = &cobra.Command{
	Use:   "case [case-id]...",
	Short: "Rebuild the index of the given cases",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCase,
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Rebuild the index of every case",
	Args:  cobra.NoArgs,
	RunE:  runAll,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(caseCmd)
	rootCmd.AddCommand(allCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// env holds what the subcommands share
type env struct {
	db      *pgxpool.Pool
	cases   *repository.CaseRepository
	indexer *service.Indexer
	logger  *slog.Logger
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()

	if cfg.Search.Type == "memory" {
		return nil, fmt.Errorf("search type %q keeps no state between processes; nothing to rebuild", cfg.Search.Type)
	}

	db, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	es, err := search.NewElasticIndex(search.ElasticConfig{
		URL:         cfg.Search.URL,
		Username:    cfg.Search.Username,
		Password:    cfg.Search.Password,
		IndexPrefix: cfg.Search.IndexPrefix,
		Stempel:     cfg.Search.Stempel,
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := es.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	indexer := service.NewIndexer(search.Instrumented(es),
		service.IndexerWithDocuments(repository.NewDocumentRepository(db)),
		service.IndexerWithLegalActs(repository.NewLegalActRepository(db)),
		service.IndexerWithJudgments(repository.NewJudgmentRepository(db)),
		service.IndexerWithTimeout(cfg.SearchTimeout()),
		service.IndexerWithLogger(logger),
	)

	return &env{
		db:      db,
		cases:   repository.NewCaseRepository(db),
		indexer: indexer,
		logger:  logger,
	}, nil
}

func runCase(cmd *cobra.Command, args []string) error {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid case id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.db.Close()

	for _, id := range ids {
		if _, err := e.cases.GetByID(cmd.Context(), id); err != nil {
			return fmt.Errorf("case %s: %w", id, err)
		}
	}
	return rebuild(cmd, e, ids)
}

func runAll(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.db.Close()

	ids, err := e.cases.ListIDs(cmd.Context())
	if err != nil {
		return err
	}
	return rebuild(cmd, e, ids)
}

// rebuild keeps going past failed cases and reports them at the end
func rebuild(cmd *cobra.Command, e *env, ids []uuid.UUID) error {
	var failed int
	for _, id := range ids {
		n, err := e.indexer.Rebuild(cmd.Context(), id)
		if err != nil {
			failed++
			e.logger.Error("rebuild failed", "case_id", id, "indexed", n, "error", err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d units\n", id, n)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(ids))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Rebuilt %d cases\n", len(ids))
	return nil
}
