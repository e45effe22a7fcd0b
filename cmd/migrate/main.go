package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"quotecompare/internal/config"
	"quotecompare/internal/utils"
	"quotecompare/pkg/database"
	"quotecompare/pkg/logger"
)

const usage = "usage: migrate [up|down|status|version]"

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.Log.Level),
		Format:  "text",
		AppName: cfg.App.Name,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	switch cfg.Database.Driver {
	case utils.DriverPostgres:
		err = runPostgres(cfg.Database.Postgres.URL, command, appLogger)
	case utils.DriverMongoDB:
		err = runMongo(cfg.Database.Mongo, command, appLogger)
	default:
		err = fmt.Errorf("driver %q has no migrations", cfg.Database.Driver)
	}
	if err != nil {
		appLogger.WithError(err).WithField("command", command).Fatal("Migration failed")
	}
}

func runPostgres(url, command string, appLogger *logger.Logger) error {
	migrator, err := database.NewSQLMigrator(url)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "status":
		return migrator.Status()
	case "version":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if err != nil {
		return err
	}

	version, err := migrator.Version()
	if err != nil {
		return err
	}
	appLogger.WithField("version", version).Info("Postgres schema version")
	return nil
}

func runMongo(cfg *config.MongoConfig, command string, appLogger *logger.Logger) error {
	mdb, err := database.NewMongoDB(cfg.ToDatabase())
	if err != nil {
		return err
	}
	defer mdb.Close()

	migrator := database.NewMigrator(mdb.Database, appLogger.Entry())

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		var current int
		if current, err = migrator.Version(); err == nil && current > 0 {
			err = migrator.Down(current - 1)
		}
	case "status", "version":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if err != nil {
		return err
	}

	version, err := migrator.Version()
	if err != nil {
		return err
	}
	appLogger.WithField("version", version).Info("MongoDB index version")
	return nil
}
