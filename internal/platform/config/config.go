package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	s "ledgergate/pkg/string"
	"ledgergate/pkg/validation"
)

// DefaultPageSize mirrors the ledger's own default vault page size.
const DefaultPageSize = 200

// DefaultServiceOrganisations are infrastructure identities hidden from peer listings.
var DefaultServiceOrganisations = []string{"Notary", "Oracle"}

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string `validate:"required"`
	Environment string `validate:"required"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	// RequestTimeout is a deadline on the context of every route except the
	// workflow trigger; 0 disables it.
	RequestTimeout time.Duration `validate:"gte=0"`

	Node     NodeRPC
	Demo     Demo
	Throttle Throttle
}

// NodeRPC configures the connection to the ledger node.
type NodeRPC struct {
	URL      string        `validate:"required,url"`
	User     string        `validate:"required"`
	Password string        `validate:"required"`
	Timeout  time.Duration `validate:"gte=0"`
}

// Demo configures the gateway endpoints.
type Demo struct {
	PageSize             int `validate:"min=1"`
	ServiceOrganisations []string
	// WorkflowWaitTimeout bounds the wait for a workflow result; 0 waits until the node answers.
	WorkflowWaitTimeout time.Duration `validate:"gte=0"`
}

// Throttle configures the global inbound rate limit; RPS 0 disables it.
type Throttle struct {
	RPS   float64 `validate:"gte=0"`
	Burst int     `validate:"gte=0"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, err
	}

	cfg := Server{
		Addr:           getEnv("LEDGERGATE_ADDR", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "local"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 0),
		Node: NodeRPC{
			URL:      getEnv("NODE_RPC_URL", "http://localhost:10006"),
			User:     getEnv("NODE_RPC_USER", "user1"),
			Password: getEnv("NODE_RPC_PASSWORD", "test"),
			Timeout:  getEnvDuration("NODE_RPC_TIMEOUT", 30*time.Second),
		},
		Demo: Demo{
			PageSize:             getEnvInt("PAGE_SIZE", DefaultPageSize),
			ServiceOrganisations: DefaultServiceOrganisations,
			WorkflowWaitTimeout:  getEnvDuration("WORKFLOW_WAIT_TIMEOUT", 0),
		},
		Throttle: Throttle{
			RPS:   getEnvFloat("THROTTLE_RPS", 0),
			Burst: getEnvInt("THROTTLE_BURST", 0),
		},
	}
	if v, ok := os.LookupEnv("SERVICE_ORGANISATIONS"); ok {
		cfg.Demo.ServiceOrganisations = s.SplitList(v)
	}

	if err := validation.Validate(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Unparseable values fall back to the default.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
