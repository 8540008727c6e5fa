package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"multiverse-server/internal/shared/utils"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Frontend   FrontendConfig
	Logging    LoggingConfig
	RateLimit  RateLimitConfig
	Simulation SimulationConfig
	Admin      AdminConfig
}

type ServerConfig struct {
	Port         string
	URL          string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	StatsTTL time.Duration
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// SimulationConfig holds the genesis defaults for new simulations. Seed 0
// means "derive from wall clock" at creation time.
type SimulationConfig struct {
	UniverseCount      int
	LawsPerUniverse    int
	MetaLawCount       int
	Seed               int64
	FeedbackMultiplier float64
}

type AdminConfig struct {
	APIKey   string
	Operator string
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config := load()

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

func load() *Config {
	return &Config{
		Server:     loadServerConfig(),
		Database:   loadDatabaseConfig(),
		Redis:      loadRedisConfig(),
		Auth:       loadAuthConfig(),
		Frontend:   loadFrontendConfig(),
		Logging:    loadLoggingConfig(),
		RateLimit:  loadRateLimitConfig(),
		Simulation: loadSimulationConfig(),
		Admin:      loadAdminConfig(),
	}
}

func loadServerConfig() ServerConfig {
	readTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_READ_TIMEOUT_SECONDS", "15"))
	writeTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_WRITE_TIMEOUT_SECONDS", "15"))
	idleTimeout, _ := strconv.Atoi(utils.GetEnv("SERVER_IDLE_TIMEOUT_SECONDS", "60"))

	return ServerConfig{
		Port:         utils.GetEnv("SERVER_PORT", "8080"),
		URL:          utils.GetEnv("SERVER_URL", "http://localhost:8080"),
		Environment:  utils.GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
		IdleTimeout:  time.Duration(idleTimeout) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	maxOpenConns, _ := strconv.Atoi(utils.GetEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdleConns, _ := strconv.Atoi(utils.GetEnv("DB_MAX_IDLE_CONNS", "5"))
	connMaxLifetime, _ := strconv.Atoi(utils.GetEnv("DB_CONN_MAX_LIFETIME_MINUTES", "5"))

	return DatabaseConfig{
		Host:            utils.GetEnv("DB_HOST", "localhost"),
		Port:            utils.GetEnv("DB_PORT", "5432"),
		User:            utils.GetEnv("DB_USER", "postgres"),
		Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
		Name:            utils.GetEnv("DB_NAME", "multiverse"),
		SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: time.Duration(connMaxLifetime) * time.Minute,
	}
}

func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(utils.GetEnv("REDIS_DB", "0"))
	statsTTL, _ := strconv.Atoi(utils.GetEnv("REDIS_STATS_TTL_SECONDS", "30"))

	return RedisConfig{
		Enabled:  utils.GetEnv("REDIS_ENABLED", "true") == "true",
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
		StatsTTL: time.Duration(statsTTL) * time.Second,
	}
}

func loadAuthConfig() AuthConfig {
	tokenExpiration, _ := strconv.Atoi(utils.GetEnv("JWT_EXPIRATION_HOURS", "24"))

	return AuthConfig{
		JWTSecret:       utils.GetEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(tokenExpiration) * time.Hour,
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       utils.GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: utils.GetEnv("CORS_DEBUG", "") == "true",
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := utils.GetEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      utils.GetEnv("LOG_LEVEL", "debug"),
		JSONFormat: environment == "production",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	requestsPerSecond, _ := strconv.ParseFloat(utils.GetEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "10"), 64)
	burstSize, _ := strconv.Atoi(utils.GetEnv("RATE_LIMIT_BURST_SIZE", "20"))

	return RateLimitConfig{
		Enabled:           utils.GetEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RequestsPerSecond: requestsPerSecond,
		BurstSize:         burstSize,
	}
}

func loadSimulationConfig() SimulationConfig {
	universeCount, _ := strconv.Atoi(utils.GetEnv("SIM_UNIVERSE_COUNT", "3"))
	lawsPerUniverse, _ := strconv.Atoi(utils.GetEnv("SIM_LAWS_PER_UNIVERSE", "5"))
	metaLawCount, _ := strconv.Atoi(utils.GetEnv("SIM_META_LAW_COUNT", "2"))
	seed, _ := strconv.ParseInt(utils.GetEnv("SIM_SEED", "0"), 10, 64)
	feedbackMultiplier, _ := strconv.ParseFloat(utils.GetEnv("SIM_FEEDBACK_MULTIPLIER", "0.5"), 64)

	return SimulationConfig{
		UniverseCount:      universeCount,
		LawsPerUniverse:    lawsPerUniverse,
		MetaLawCount:       metaLawCount,
		Seed:               seed,
		FeedbackMultiplier: feedbackMultiplier,
	}
}

func loadAdminConfig() AdminConfig {
	return AdminConfig{
		APIKey:   utils.GetEnv("ADMIN_API_KEY", ""),
		Operator: utils.GetEnv("ADMIN_OPERATOR", "operator"),
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Admin.APIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Simulation.UniverseCount < 1 {
		return fmt.Errorf("SIM_UNIVERSE_COUNT must be at least 1")
	}

	if c.Simulation.LawsPerUniverse < 1 {
		return fmt.Errorf("SIM_LAWS_PER_UNIVERSE must be at least 1")
	}

	return nil
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
