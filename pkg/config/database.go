package config

import (
	"fmt"

	dbutils "github.com/tendant/db-utils/db"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"CWH_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"CWH_PG_PORT" env-default:"5432"`
	Database string `env:"CWH_PG_DATABASE" env-default:"cwh_db"`
	User     string `env:"CWH_PG_USER" env-default:"cwh"`
	Password string `env:"CWH_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"CWH_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL.
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToDbConfig converts the config to a db-utils DbConfig.
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}
