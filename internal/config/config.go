package config

import (
	"crypto"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

const jwtSigningAlgorithmEd25519 = "EdDSA"

// Supported store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMongo    = "mongo"
)

// Supported tracing exporters
const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
	TracingExporterOtlp   = "otlp"
)

type HTTPCfg struct {
	Port            int           `env:"HTTP_PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type StoreCfg struct {
	Backend        string        `env:"STORE_BACKEND" envDefault:"postgres"`
	ConnectTimeout time.Duration `env:"STORE_CONNECT_TIMEOUT" envDefault:"5s"`
}

type MongoCfg struct {
	User        string `env:"MONGO_USER" envDefault:""`
	Password    string `env:"MONGO_PASSWORD" envDefault:""`
	Host        string `env:"MONGO_HOST" envDefault:"mongo-customers"`
	Port        int    `env:"MONGO_PORT" envDefault:"27017"`
	MaxPoolSize int    `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
}

type PostgresCfg struct {
	User        string `env:"POSTGRES_USER" envDefault:""`
	Password    string `env:"POSTGRES_PASSWORD" envDefault:""`
	Database    string `env:"POSTGRES_DB" envDefault:""`
	Host        string `env:"POSTGRES_HOST" envDefault:"pg-customers"`
	SslMode     string `env:"POSTGRES_SLL_MODE" envDefault:"disable"`
	Port        int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PoolMaxConn int    `env:"POSTGRES_POOL_MAX_CONN" envDefault:"100"`
}

type RedisCfg struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type JwtCfg struct {
	Issuer         string        `env:"AUTH_JWT_ISSUER" envDefault:"customers-mvc"`
	TimeToLive     time.Duration `env:"AUTH_JWT_TIME_TO_LIVE" envDefault:"10m"`
	PrivateKeyFile string        `env:"AUTH_JWT_PRIVATE_KEY_FILE" envDefault:""`
	PublicKeyFile  string        `env:"AUTH_JWT_PUBLIC_KEY_FILE" envDefault:""`
	SigningMethod  jwt.SigningMethod
	PrivateKey     crypto.PrivateKey
	PublicKey      crypto.PublicKey
}

type AuthCfg struct {
	JwtCfg JwtCfg
}

// Enabled reports whether customer endpoints require access token
func (c AuthCfg) Enabled() bool {
	return c.JwtCfg.PublicKey != nil
}

type DiagnosticsCfg struct {
	Port         int    `env:"DIAGNOSTICS_PORT" envDefault:"9090"`
	User         string `env:"DIAGNOSTICS_USER" envDefault:""`
	PasswordHash string `env:"DIAGNOSTICS_PASSWORD_HASH" envDefault:""`
}

// Protected reports whether diagnostics endpoints require basic auth
func (c DiagnosticsCfg) Protected() bool {
	return c.User != "" && c.PasswordHash != ""
}

type TracingCfg struct {
	Exporter     string `env:"TRACING_EXPORTER" envDefault:"none"`
	OtlpEndpoint string `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	ServiceName  string `env:"TRACING_SERVICE_NAME" envDefault:"customers-mvc"`
}

type LogCfg struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type Config struct {
	HTTPCfg        HTTPCfg
	StoreCfg       StoreCfg
	MongoCfg       MongoCfg
	PostgresCfg    PostgresCfg
	RedisCfg       RedisCfg
	AuthCfg        AuthCfg
	DiagnosticsCfg DiagnosticsCfg
	TracingCfg     TracingCfg
	LogCfg         LogCfg
}

// Build reads configuration from environment, variables from .env file are loaded first if it is present
func Build() (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env file - %w", err)
	}

	opts := env.Options{RequiredIfNoDef: true}
	if err := env.Parse(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to parse environment variables - %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	if err := cfg.AuthCfg.JwtCfg.loadKeys(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BuildAuth reads only authentication configuration, it is used by tools which don't run the server
func BuildAuth() (AuthCfg, error) {
	var cfg AuthCfg

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env file - %w", err)
	}

	if err := env.Parse(&cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment variables - %w", err)
	}

	if err := cfg.JwtCfg.loadKeys(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreCfg.Backend {
	case StoreBackendPostgres:
		if c.PostgresCfg.User == "" || c.PostgresCfg.Database == "" {
			return errors.New("POSTGRES_USER and POSTGRES_DB must be set for postgres store backend")
		}
	case StoreBackendMongo:
		if c.MongoCfg.User == "" {
			return errors.New("MONGO_USER must be set for mongo store backend")
		}
	default:
		return fmt.Errorf("unsupported store backend %q", c.StoreCfg.Backend)
	}

	switch c.TracingCfg.Exporter {
	case TracingExporterNone, TracingExporterStdout, TracingExporterOtlp:
	default:
		return fmt.Errorf("unsupported tracing exporter %q", c.TracingCfg.Exporter)
	}
	return nil
}

func (c *JwtCfg) loadKeys() error {
	c.SigningMethod = jwt.GetSigningMethod(jwtSigningAlgorithmEd25519)

	if c.PrivateKeyFile != "" {
		jwtPrivateKeyBytes, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read private key file for jwt - %w", err)
		}

		jwtPrivateKey, err := jwt.ParseEdPrivateKeyFromPEM(jwtPrivateKeyBytes)
		if err != nil {
			return fmt.Errorf("failed to parse private key for jwt - %w", err)
		}
		c.PrivateKey = jwtPrivateKey
	}

	if c.PublicKeyFile != "" {
		jwtPublicKeyBytes, err := os.ReadFile(c.PublicKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read public key file for jwt - %w", err)
		}

		jwtPublicKey, err := jwt.ParseEdPublicKeyFromPEM(jwtPublicKeyBytes)
		if err != nil {
			return fmt.Errorf("failed to parse public key for jwt - %w", err)
		}
		c.PublicKey = jwtPublicKey
	}
	return nil
}
