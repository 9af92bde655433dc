// api/config/config.go
package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Log           LogConfiguration
	Neo4j         DatabaseConfiguration
	Postgres      PostgresConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Audit         AuditConfiguration
	Structure     StructureConfiguration
	Storage       StorageConfiguration
	Admin         AdminConfiguration
	Permissions   PermissionsConfiguration
	Auth          AuthConfiguration
	RateLimit     RateLimitConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfiguration struct {
	Dir string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

type PostgresConfiguration struct {
	DSN string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

type AuditConfiguration struct {
	Index string
}

// StructureConfiguration points at the service that owns the building hierarchy
type StructureConfiguration struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type StorageConfiguration struct {
	Permissions StorageBackendConfiguration
}

type StorageBackendConfiguration struct {
	Backend string
}

// AdminConfiguration describes the distinguished admin group and its bootstrap user
type AdminConfiguration struct {
	GroupName string
	Email     string
	FirstName string
	LastName  string
}

type PermissionsConfiguration struct {
	Actions []string
}

type AuthConfiguration struct {
	JWTSecret string
}

type RateLimitConfiguration struct {
	Requests int
	Duration time.Duration
}

const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
)

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaults()

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.readTimeout", "15s")
	viper.SetDefault("server.writeTimeout", "15s")
	viper.SetDefault("log.dir", "logging")
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "")
	viper.SetDefault("postgres.dsn", "host=localhost user=postgres dbname=permissions port=5432 sslmode=disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.lockTTL", "5s")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("audit.index", "permission-audit")
	viper.SetDefault("structure.url", "http://127.0.0.1:8002")
	viper.SetDefault("structure.timeout", "5s")
	viper.SetDefault("structure.cacheTTL", "30s")
	viper.SetDefault("storage.permissions.backend", BackendNeo4j)
	viper.SetDefault("admin.groupName", "Administration")
	viper.SetDefault("admin.email", "admin@localhost")
	viper.SetDefault("admin.firstName", "admin")
	viper.SetDefault("admin.lastName", "admin")
	viper.SetDefault("permissions.actions", []string{"create", "read", "update", "delete"})
	viper.SetDefault("auth.jwtSecret", "")
	viper.SetDefault("rateLimit.requests", 100)
	viper.SetDefault("rateLimit.duration", "1m")
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}
