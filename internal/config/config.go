package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable the server reads.
const EnvPrefix = "INTERVIEW_ETL_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Table     TableConfig     `yaml:"table"`
	Export    ExportConfig    `yaml:"export"`
}

type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" validate:"oneof=stdio http"`
}

type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Path  string `yaml:"path"`
}

// TableConfig controls how workspaces open and order their tables.
type TableConfig struct {
	Locale         string `yaml:"locale" validate:"required,bcp47_language_tag"`
	DefaultSchema  string `yaml:"default_schema" validate:"required"`
	ConstructsFile string `yaml:"constructs_file"`
}

// ExportConfig selects where published CSV files are stored.
type ExportConfig struct {
	Driver    string        `yaml:"driver" validate:"oneof=fs memory s3"`
	FSRoot    string        `yaml:"fs_root" validate:"required_if=Driver fs"`
	URLExpiry time.Duration `yaml:"url_expiry" validate:"min=0"`
	S3        S3Config      `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "interview-etl.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Table: TableConfig{
			Locale:        "en",
			DefaultSchema: "user_story",
		},
		Export: ExportConfig{
			Driver:    "fs",
			FSRoot:    "exports",
			URLExpiry: 15 * time.Minute,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables,
// then validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the cross-field rules tags cannot express.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Export.Driver == "s3" && c.Export.S3.Bucket == "" {
		return fmt.Errorf("invalid config: export.s3.bucket is required for the s3 driver")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	setString("SERVER_HOST", &cfg.Server.Host)
	if portStr := os.Getenv(EnvPrefix + "SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", EnvPrefix, err)
		}
		cfg.Server.Port = port
	}
	setString("TRANSPORT", &cfg.Transport.Mode)
	setString("DB_PATH", &cfg.DB.Path)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_PATH", &cfg.Log.Path)
	setString("LOCALE", &cfg.Table.Locale)
	setString("DEFAULT_SCHEMA", &cfg.Table.DefaultSchema)
	setString("CONSTRUCTS_FILE", &cfg.Table.ConstructsFile)
	setString("EXPORT_DRIVER", &cfg.Export.Driver)
	setString("EXPORT_FS_ROOT", &cfg.Export.FSRoot)
	if expiry := os.Getenv(EnvPrefix + "EXPORT_URL_EXPIRY"); expiry != "" {
		d, err := time.ParseDuration(expiry)
		if err != nil {
			return fmt.Errorf("invalid %sEXPORT_URL_EXPIRY: %w", EnvPrefix, err)
		}
		cfg.Export.URLExpiry = d
	}
	setString("S3_BUCKET", &cfg.Export.S3.Bucket)
	setString("S3_REGION", &cfg.Export.S3.Region)
	setString("S3_ENDPOINT", &cfg.Export.S3.Endpoint)
	setString("S3_PREFIX", &cfg.Export.S3.Prefix)
	setString("S3_ACCESS_KEY_ID", &cfg.Export.S3.AccessKeyID)
	setString("S3_SECRET_ACCESS_KEY", &cfg.Export.S3.SecretAccessKey)
	if ps := os.Getenv(EnvPrefix + "S3_PATH_STYLE"); ps != "" {
		v, err := strconv.ParseBool(ps)
		if err != nil {
			return fmt.Errorf("invalid %sS3_PATH_STYLE: %w", EnvPrefix, err)
		}
		cfg.Export.S3.PathStyle = v
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
