// seed_permissions escribe la tabla de permisos en role_permissions (idempotente).
//
// Uso: go run ./cmd/seed_permissions [-file permisos.csv] [-charset ISO-8859-1]
// Sin -file siembra la tabla por defecto del back office.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/grantfile"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-backoffice/pkg/config"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

func main() {
	file := flag.String("file", "", "CSV con permisos: rol,recurso,acción[,own][,campos]")
	charset := flag.String("charset", "UTF-8", "codificación del archivo (UTF-8 o ISO-8859-1)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: cfg.App.Name})

	grants := rbac.MustDefault().Grants()
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("abrir archivo de permisos")
		}
		grants, err = grantfile.Read(f, *charset)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("leer archivo de permisos")
		}
		// valida la tabla completa antes de escribirla
		if _, err := rbac.NewRegistryFromGrants(grants); err != nil {
			log.Fatal().Err(err).Msg("tabla de permisos inválida")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.NewGrantRepository(pool).ReplaceAll(ctx, grants); err != nil {
		log.Fatal().Err(err).Msg("escribir role_permissions")
	}
	log.Info().Int("grants", len(grants)).Msg("permisos sembrados")
}
