package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Auth struct {
		JWTSecret     string
		TokenTTLHours int
		BcryptCost    int
	}
	Database struct {
		Driver string

		// postgres
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string

		// sqlite
		Path string

		MaxConns           int
		ConnTimeoutSeconds int
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("LOGIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlhours", 24)
	v.SetDefault("auth.bcryptcost", 12)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "login_system")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "data/users.db")
	v.SetDefault("database.maxconns", 10)
	v.SetDefault("database.conntimeoutseconds", 5)

	// legacy environment names used by earlier deployments
	_ = v.BindEnv("auth.jwtsecret", "LOGIN_AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("database.host", "LOGIN_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "LOGIN_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "LOGIN_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "LOGIN_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "LOGIN_DATABASE_NAME", "DB_NAME")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
