package wire

import (
	"os"

	"fieldpress-server/cmd/config"
	"fieldpress-server/internal/infra/sql"
)

func provideAppConfig() config.AppConfig {
	return config.LoadConfig()
}

func provideDatabase(cfg config.AppConfig) sql.ORM {
	env, ok := os.LookupEnv("ENV")
	if !ok {
		env = "production"
	}

	if env == "local" {
		orm, err := sql.NewMemoryORM("fieldpress")
		if err != nil {
			panic(err)
		}
		return orm
	}

	orm, err := sql.NewPosgreORM(cfg.Postgresql.DSN)
	if err != nil {
		panic(err)
	}

	return orm
}
