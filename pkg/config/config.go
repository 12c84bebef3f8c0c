package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	apperrors "github.com/pasuper/supercron/pkg/errors"
)

// Environment is a deployment environment name.
type Environment string

const (
	EnvLocal       Environment = "local"
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ParseEnvironment validates a name against the known environments.
// An empty name selects the local environment.
func ParseEnvironment(name string) (Environment, error) {
	if name == "" {
		return EnvLocal, nil
	}
	switch Environment(name) {
	case EnvLocal, EnvDevelopment, EnvProduction:
		return Environment(name), nil
	}
	return "", fmt.Errorf("%w: %q (must be one of local, development, production)",
		apperrors.ErrUnknownEnvironment, name)
}

// EnvFile returns the environment file name for an environment.
func (e Environment) EnvFile() string {
	return ".env." + string(e)
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	AppEnv   Environment
	Host     string
	Port     int
	LogLevel string

	// Workers bounds concurrency of per-store job processing
	Workers int

	// API metadata reported by the health endpoint
	APIVersion string
	APIPrefix  string

	DB   DatabaseConfig
	FTP  FTPConfig
	ESL  ESLConfig
	NAS  NASConfig
	SMTP SMTPConfig
}

// DatabaseConfig holds the primary and secondary MySQL settings
type DatabaseConfig struct {
	Host              string
	Port              int
	UserPrimary       string
	PasswordPrimary   string
	DatabasePrimary   string
	UserSecondary     string
	PasswordSecondary string
	DatabaseSecondary string
}

// FTPConfig holds the store inventory FTP settings
type FTPConfig struct {
	Hostname string
	Username string
	Password string
	Port     int
}

// ESLConfig holds the electronic shelf label FTP and API settings
type ESLConfig struct {
	Hostname string
	Username string
	Password string
	Port     int
	APIURL   string
	PushURL  string
	Sign     string
}

// NASConfig holds the SFTP settings for inventory backups
type NASConfig struct {
	Hostname string
	Username string
	Password string
	Port     int
}

// SMTPConfig holds the report mail settings
type SMTPConfig struct {
	Server           string
	Port             int
	Sender           string
	Password         string
	DefaultRecipient string
}

// Load builds the configuration for the named environment.
//
// The environment file .env.<name> must exist in the working directory;
// a missing file is the one fatal bootstrap error. The file fills in
// values the process environment does not set; variables already present
// in the process environment win, so container-run overrides like
// -e PORT=9000 take effect. Everything is then read into
// a single Config record.
func Load(envName string) (*Config, error) {
	env, err := ParseEnvironment(envName)
	if err != nil {
		return nil, err
	}

	envFile := env.EnvFile()
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrEnvFileNotFound, envFile)
		}
		return nil, fmt.Errorf("checking environment file %s: %w", envFile, err)
	}
	if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("loading environment file %s: %w", envFile, err)
	}

	config := &Config{
		AppEnv:     env,
		Host:       getEnvOrDefault("HOST", "0.0.0.0"),
		Port:       getEnvIntOrDefault("PORT", 8016),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		Workers:    getEnvIntOrDefault("WORKERS", 2),
		APIVersion: "v1",
		APIPrefix:  "/api/v1",
		DB: DatabaseConfig{
			Host:              getEnvOrDefault("DB_HOST", "localhost"),
			Port:              getEnvIntOrDefault("DB_PORT", 3306),
			UserPrimary:       os.Getenv("DB_USER_PRIMARY"),
			PasswordPrimary:   os.Getenv("DB_PASSWORD_PRIMARY"),
			DatabasePrimary:   os.Getenv("DB_DATABASE_PRIMARY"),
			UserSecondary:     os.Getenv("DB_USER_SECONDARY"),
			PasswordSecondary: os.Getenv("DB_PASSWORD_SECONDARY"),
			DatabaseSecondary: os.Getenv("DB_DATABASE_SECONDARY"),
		},
		FTP: FTPConfig{
			Hostname: os.Getenv("FTP_HOSTNAME"),
			Username: os.Getenv("FTP_USERNAME"),
			Password: os.Getenv("FTP_PASSWORD"),
			Port:     getEnvIntOrDefault("FTP_PORT", 21),
		},
		ESL: ESLConfig{
			Hostname: os.Getenv("FTP_ESL_HOSTNAME"),
			Username: os.Getenv("FTP_ESL_USERNAME"),
			Password: os.Getenv("FTP_ESL_PASSWORD"),
			Port:     getEnvIntOrDefault("FTP_ESL_PORT", 21),
			APIURL:   getEnvOrDefault("API_STRAPI", "http://localhost:8080"),
			PushURL:  getEnvOrDefault("ESL_PUSH_URL", "https://esl.pasuper.xyz/api/default/product/create_multiple"),
			Sign:     os.Getenv("ESL_SIGN"),
		},
		NAS: NASConfig{
			Hostname: os.Getenv("NAS_HOSTNAME"),
			Username: os.Getenv("NAS_USERNAME"),
			Password: os.Getenv("NAS_PASSWORD"),
			Port:     getEnvIntOrDefault("NAS_PORT", 22),
		},
		SMTP: SMTPConfig{
			Server:           getEnvOrDefault("SMTP_SERVER", "smtp.gmail.com"),
			Port:             getEnvIntOrDefault("SMTP_PORT", 587),
			Sender:           os.Getenv("SMTP_SENDER"),
			Password:         os.Getenv("SMTP_PASSWORD"),
			DefaultRecipient: os.Getenv("DEFAULT_RECIPIENT"),
		},
	}

	return config, nil
}

// Addr returns the full server listen address
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// PrimaryDSN returns the MySQL DSN for the primary database
func (c *DatabaseConfig) PrimaryDSN() string {
	return c.dsn(c.UserPrimary, c.PasswordPrimary, c.DatabasePrimary)
}

// SecondaryDSN returns the MySQL DSN for the secondary database
func (c *DatabaseConfig) SecondaryDSN() string {
	return c.dsn(c.UserSecondary, c.PasswordSecondary, c.DatabaseSecondary)
}

func (c *DatabaseConfig) dsn(user, password, database string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, c.Host, c.Port, database)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.DB.UserPrimary == "" || c.DB.DatabasePrimary == "" {
		return fmt.Errorf("primary database configuration is required")
	}
	if c.DB.UserSecondary == "" || c.DB.DatabaseSecondary == "" {
		return fmt.Errorf("secondary database configuration is required")
	}
	if c.FTP.Hostname == "" {
		return fmt.Errorf("ftp configuration is required")
	}
	if c.ESL.Hostname == "" || c.ESL.Sign == "" {
		return fmt.Errorf("esl configuration is required")
	}
	if c.NAS.Hostname == "" {
		return fmt.Errorf("nas configuration is required")
	}
	if c.SMTP.Sender == "" {
		return fmt.Errorf("smtp configuration is required")
	}
	return nil
}

// Helper functions
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
