package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var loadConfigOnce sync.Once
var configInstance AppConfig

func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		viper.SetEnvPrefix("fieldpress_server")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.SetConfigName("server")
		viper.AddConfigPath("config")
		viper.AddConfigPath("/config")
		if err := viper.ReadInConfig(); err != nil {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
		configInstance = AppConfig{
			General: GeneralConfig{
				LogLevel: viper.GetString("general.log_level"),
			},
			HTTP: HTTPConfig{
				Addr:           viper.GetString("http.addr"),
				AllowedOrigins: viper.GetStringSlice("http.allowed_origins"),
			},
			Postgresql: PostgresqlConfig{
				DSN: viper.GetString("database.dsn"),
			},
		}
	})

	return configInstance
}

type AppConfig struct {
	General    GeneralConfig
	HTTP       HTTPConfig
	Postgresql PostgresqlConfig
}

type GeneralConfig struct {
	LogLevel string
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

type PostgresqlConfig struct {
	DSN string
}
