package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/arbor/internal/cli"
	"github.com/alexanderramin/arbor/internal/config"
	"github.com/alexanderramin/arbor/internal/db"
	"github.com/alexanderramin/arbor/internal/repository"
	"github.com/alexanderramin/arbor/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	observer := service.UseCaseObserver(service.NoopUseCaseObserver{})
	if cfg.Log.UseCases {
		level, _ := cfg.Log.SlogLevel()
		observer = service.NewLogUseCaseObserver(os.Stderr, level)
	}

	projects := service.NewProjectService(store, observer)
	tasks := service.NewTaskService(store, observer)
	app := &cli.App{
		Projects: projects,
		Tasks:    tasks,
		Import:   service.NewImportService(store, observer),
	}

	// Prompts only make sense on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// openStore opens the configured backend and returns a function that
// releases it.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	switch cfg.Store {
	case config.StoreNeo4j:
		driver, err := db.OpenNeo4j(ctx, db.Neo4jConfig{
			URI:      cfg.Neo4j.URI,
			User:     cfg.Neo4j.User,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewNeo4jStore(driver, cfg.Neo4j.Database)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = driver.Close(ctx)
			return nil, nil, fmt.Errorf("preparing neo4j schema: %w", err)
		}
		return store, func() { _ = driver.Close(ctx) }, nil
	default:
		database, err := db.OpenDB(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteStore(database), func() { closeQuietly(database) }, nil
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
