package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port         string
		RateLimit    int
		QueryTimeout time.Duration
	}
	Mongo struct {
		URI        string
		Database   string
		Collection string
	}
	Redis struct {
		URL string
		TTL time.Duration
	}
	// Database is the Postgres lookup audit store.
	Database struct {
		URL string
	}
	API struct {
		BaseURL string
	}
	Log struct {
		Level string
	}
}

// Load reads config.yaml from the working directory (if present) and lets
// environment variables override it, e.g. MONGO_URI for mongo.uri.
func Load() (*Config, error) {
	return LoadFrom(".")
}

func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.query_timeout", 10*time.Second)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "test")
	v.SetDefault("mongo.collection", "StudentData")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", time.Minute)
	v.SetDefault("database.url", "")
	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	config.Server.Port = v.GetString("server.port")
	config.Server.RateLimit = v.GetInt("server.rate_limit")
	config.Server.QueryTimeout = v.GetDuration("server.query_timeout")
	config.Mongo.URI = v.GetString("mongo.uri")
	config.Mongo.Database = v.GetString("mongo.database")
	config.Mongo.Collection = v.GetString("mongo.collection")
	config.Redis.URL = v.GetString("redis.url")
	config.Redis.TTL = v.GetDuration("redis.ttl")
	config.Database.URL = v.GetString("database.url")
	config.API.BaseURL = strings.TrimRight(v.GetString("api.base_url"), "/")
	config.Log.Level = v.GetString("log.level")

	return &config, nil
}

// ValidateMongo checks what the server and seeder need.
func (c *Config) ValidateMongo() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Mongo.Collection == "" {
		return fmt.Errorf("MONGO_COLLECTION must not be empty")
	}
	return nil
}

func (c *Config) ValidateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}
