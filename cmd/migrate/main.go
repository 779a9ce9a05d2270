// migrate aplica o revierte las migraciones embebidas.
//
// Uso: go run ./cmd/migrate [up|down] [pasos]
package main

import (
	"os"
	"strconv"

	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-backoffice/pkg/config"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: cfg.App.Name})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	dsn := cfg.DB.ConnectionString()

	switch cmd {
	case "up":
		if err := postgres.Migrate(dsn); err != nil {
			log.Fatal().Err(err).Msg("migrate up")
		}
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps <= 0 {
				log.Fatal().Str("pasos", os.Args[2]).Msg("pasos inválidos")
			}
		}
		if err := postgres.MigrateDown(dsn, steps); err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
	default:
		log.Fatal().Str("cmd", cmd).Msg("comando desconocido: use up o down")
	}
	log.Info().Str("cmd", cmd).Msg("migraciones aplicadas")
}
