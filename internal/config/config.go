// Package config loads service configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"cc-insights-go/internal/matcher"
)

type Config struct {
	Server     ServerConfig             `mapstructure:"server"`
	Dataset    DatasetConfig            `mapstructure:"dataset"`
	Database   DatabaseConfig           `mapstructure:"database"`
	Report     ReportConfig             `mapstructure:"report"`
	Categories []matcher.CategoryConfig `mapstructure:"categories"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatasetConfig struct {
	Root string `mapstructure:"root"`
	Date string `mapstructure:"date"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// Dictionary returns the configured phrase categories, or the built-in
// dictionary when none are configured.
func (c *Config) Dictionary() matcher.Dictionary {
	if len(c.Categories) > 0 {
		return matcher.Dictionary(c.Categories)
	}
	return matcher.DefaultDictionary()
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  "disable",
	}, nil
}

// Load reads the config file at path. A missing file is not an error; the
// defaults describe a local in-memory run.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("dataset.root", "data")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "cc_insights")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)
	v.SetDefault("report.output_dir", "reports")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
		config.Database.UseInMemory = false
	}

	if port := v.GetInt("PORT"); port != 0 {
		config.Server.Port = port
	}
	if root := v.GetString("DATA_ROOT"); root != "" {
		config.Dataset.Root = root
	}

	if err := config.Dictionary().Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
