// migrate aplica o revierte las migraciones SQL embebidas.
//
// Uso:
//
//	go run ./cmd/migrate                  # up
//	go run ./cmd/migrate -cmd down
//	go run ./cmd/migrate -cmd steps -n -1
//	go run ./cmd/migrate -cmd version
//	go run ./cmd/migrate -cmd force -n 1
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/StantonMatt/coab-platform/internal/infrastructure/postgres"
	"github.com/StantonMatt/coab-platform/pkg/config"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "up | down | steps | version | force")
	n := flag.Int("n", 0, "cantidad de pasos (steps) o versión (force)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "coab-migrate"})

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("migrador")
	}
	defer mg.Close()

	switch *cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "steps":
		if *n == 0 {
			fmt.Fprintln(os.Stderr, "-n es obligatorio con -cmd steps")
			os.Exit(2)
		}
		err = mg.Steps(*n)
	case "force":
		err = mg.Force(*n)
	case "version":
		v, dirty, verr := mg.Version()
		if verr != nil {
			err = verr
			break
		}
		fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", *cmd).Msg("migración fallida")
	}
}
