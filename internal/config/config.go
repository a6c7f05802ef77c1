package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/solaros/solar-os/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Persistence PersistenceConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Backup      BackupConfig
	Secrets     SecretsConfig
	Logging     LoggingConfig
	Server      ServerConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

// PersistenceConfig selects the durable slot the state snapshot is written to
type PersistenceConfig struct {
	// Driver is one of "memory", "file", "sqlite", "postgres" or "redis"
	Driver string
	// FilePath is the snapshot file used by the file driver
	FilePath string
	// SQLitePath is the database file used by the sqlite driver
	SQLitePath string
	// SlotKey names the slot inside a shared backend (row key or redis key)
	SlotKey string
	// WriteTimeout bounds a single snapshot write (seconds)
	WriteTimeout int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// RedisConfig holds the connection settings for the redis slot driver
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	// Mode is one of "local", "azure" or "s3"
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	S3Bucket              string
	S3Region              string
	S3Endpoint            string
	S3AccessKeyID         string
	S3SecretAccessKey     string
}

// BackupConfig controls the scheduled snapshot backup job
type BackupConfig struct {
	Enabled  bool
	Schedule string
	Prefix   string
	// Retain is the number of snapshots kept; 0 keeps all
	Retain int
	// ExportReports also writes the stored reports as a workbook next to each snapshot
	ExportReports bool
	// Timeout bounds a single backup run (seconds)
	Timeout int
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

// ServerConfig holds the ops HTTP listener settings
type ServerConfig struct {
	Enabled      bool
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// TimeoutDuration returns the backup run timeout as duration
func (b *BackupConfig) TimeoutDuration() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// WriteTimeoutDuration returns the snapshot write timeout as duration
func (p *PersistenceConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(p.WriteTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late at startup
func (c *Config) Validate() error {
	switch c.Persistence.Driver {
	case "memory", "file", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unsupported persistence driver: %s", c.Persistence.Driver)
	}
	if c.Persistence.SlotKey == "" {
		return fmt.Errorf("persistence slot key is required")
	}
	if c.Backup.Enabled && c.Backup.Schedule == "" {
		return fmt.Errorf("backup schedule is required when backups are enabled")
	}
	if c.Backup.Retain < 0 {
		return fmt.Errorf("backup retain must not be negative")
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// Key Vault is used when USE_AZURE_KEY_VAULT=true and the environment is staging or production.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if err := applySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// secretSource is the subset of the secrets provider used to resolve credentials
type secretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envVar string) (string, error)
}

// applySecrets overwrites credential fields with values from the secret source.
// Missing secrets keep the value already loaded from config or environment.
func applySecrets(ctx context.Context, cfg *Config, src secretSource) error {
	targets := []struct {
		secret string
		env    string
		dst    *string
	}{
		{"POSTGRES-MAIN-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"POSTGRES-MAIN-USER", "DATABASE_USER", &cfg.Database.User},
		{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"redis-password", "REDIS_PASSWORD", &cfg.Redis.Password},
		{"storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString},
		{"s3-access-key-id", "STORAGE_S3ACCESSKEYID", &cfg.Storage.S3AccessKeyID},
		{"s3-secret-access-key", "STORAGE_S3SECRETACCESSKEY", &cfg.Storage.S3SecretAccessKey},
	}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if value, err := src.GetSecretOrEnv(ctx, t.secret, t.env); err == nil && value != "" {
			*t.dst = value
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Solar OS")
	v.SetDefault("app.environment", "development")

	// Persistence defaults
	v.SetDefault("persistence.driver", "file")
	v.SetDefault("persistence.filePath", "./data/solar_os_data.json")
	v.SetDefault("persistence.sqlitePath", "./data/solar_os.db")
	v.SetDefault("persistence.slotKey", "solar_os_data")
	v.SetDefault("persistence.writeTimeout", 5)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "solar_os")
	v.SetDefault("database.user", "solar_os")
	v.SetDefault("database.password", "solar_os")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 5)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", 300)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "solar-os-backups")
	v.SetDefault("storage.cloudConnectionString", "")
	v.SetDefault("storage.s3Bucket", "")
	v.SetDefault("storage.s3Region", "ap-south-1")
	v.SetDefault("storage.s3Endpoint", "")
	v.SetDefault("storage.s3AccessKeyID", "")
	v.SetDefault("storage.s3SecretAccessKey", "")

	// Backup defaults
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.schedule", "0 2 * * *") // daily at 02:00
	v.SetDefault("backup.prefix", "snapshots")
	v.SetDefault("backup.retain", 14)
	v.SetDefault("backup.exportReports", true)
	v.SetDefault("backup.timeout", 120)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 9090)
	v.SetDefault("server.readTimeout", 10)
	v.SetDefault("server.writeTimeout", 10)
}
