package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/wholesale-storefront/pkg/config"
	"github.com/angelmondragon/wholesale-storefront/pkg/db"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/migrate"
)

const serviceName = "storefront-migrate"

type target struct {
	conn    *sql.DB
	dialect string
	dir     string
}

// dbCommands need a live connection; create and validate work on files only.
var dbCommands = map[string]func(ctx context.Context, t target, version string) error{
	"up": func(ctx context.Context, t target, _ string) error {
		// Up refuses to apply a directory that would not also run on sqlite.
		if err := migrate.ValidateDir(t.dir); err != nil {
			return err
		}
		return migrate.Run(ctx, t.conn, t.dialect, t.dir, "up")
	},
	"down": func(ctx context.Context, t target, _ string) error {
		return migrate.Run(ctx, t.conn, t.dialect, t.dir, "down")
	},
	"status": func(ctx context.Context, t target, _ string) error {
		return migrate.Run(ctx, t.conn, t.dialect, t.dir, "status")
	},
	"version": func(ctx context.Context, t target, version string) error {
		if version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, t.conn, t.dialect, t.dir, version)
	},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	switch *cmd {
	case "create":
		if *name == "" {
			exit("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exit("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exit("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	run, ok := dbCommands[*cmd]
	if !ok {
		exit("unknown -cmd value: %s", *cmd)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    *dir,
		"driver": db.Driver(cfg.DB),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	dialect, err := migrate.DialectFor(db.Driver(cfg.DB))
	requireResource(ctx, logg, "goose dialect", err)

	logg.Info(ctx, "migrate ready")
	if err := run(ctx, target{conn: sqlDB, dialect: dialect, dir: *dir}, *version); err != nil {
		logg.Error(ctx, "migration command failed", err)
		_ = dbClient.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migrate finished")
}

func exit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
