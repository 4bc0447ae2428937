// projectctl provisions owners and projects for the lovestory service.
//
// Usage:
//
//	projectctl owner create --email <addr> --password <pw> [--name <name>]
//	projectctl project create --owner <addr> --code <code> --slug <slug> [--seed seed.yaml] [--editable-until 2026-12-31T00:00:00Z]
//	projectctl project publish --id <project-id>
//	projectctl project defaults > seed.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lovestory/lovestory/backend/go-services/internal/config"
	"github.com/lovestory/lovestory/backend/go-services/internal/database"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/internal/users"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "projectctl",
	Short: "Provision owners and projects for the lovestory service",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(projectCmd)
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// backends are the stores a command works against.
type backends struct {
	cfg      *config.Config
	users    *users.Service
	projects *projects.Service
	closers  []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// open connects to the stores the service is configured with. In-memory
// backends are refused: anything created there would vanish on exit.
func open(ctx context.Context) (*backends, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	b := &backends{cfg: cfg}

	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = mongoClient.Disconnect(context.Background()) })
		b.users = users.NewService(users.NewMongoUserRepository(mongoClient.Database(cfg.MongoDB.Database).Collection("users")))
	}

	switch cfg.Content.Backend {
	case config.BackendMongo:
		col := mongoClient.Database(cfg.MongoDB.Database).Collection("projects")
		b.projects = projects.NewService(projects.NewMongoRepo(col))
	case config.BackendPostgres:
		var pool *pgxpool.Pool
		pool, err = database.ConnectPostgres(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, 10*time.Second)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		repo := projects.NewPostgresRepo(pool)
		if err := repo.Migrate(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate projects: %w", err)
		}
		b.projects = projects.NewService(repo)
	default:
		b.Close()
		return nil, fmt.Errorf("CONTENT_BACKEND=%s keeps nothing; set it to mongo or postgres", cfg.Content.Backend)
	}
	return b, nil
}

// withBackends runs fn against open stores with a bounded context.
func withBackends(cmd *cobra.Command, fn func(ctx context.Context, b *backends) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	b, err := open(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}
