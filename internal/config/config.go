package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration, read from the environment with an
// optional .env file underneath.
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	FrontendURL         string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
}

// Load reads configuration. Real environment variables win over .env entries.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := envDefault("APP_ENV", "development")

	return &Config{
		Env:                 env,
		Port:                envDefault("PORT", "8080"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         databaseURL(env),
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		FrontendURL:         viper.GetString("FRONTEND_URL"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

func envDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

// databaseURL picks the connection string for the current environment, so
// one .env can carry dev, test, and prod databases side by side.
func databaseURL(env string) string {
	switch env {
	case "production":
		return viper.GetString("DATABASE_URL_PROD")
	case "test":
		return viper.GetString("DATABASE_URL_TEST")
	default:
		return viper.GetString("DATABASE_URL_DEV")
	}
}
