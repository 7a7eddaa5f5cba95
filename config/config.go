//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the legal agent settings from the environment and an
// optional .env file. Variables set in the process win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvProjectEndpoint     = "PROJECT_ENDPOINT"
	EnvModelDeploymentName = "MODEL_DEPLOYMENT_NAME"
	EnvPGConnection        = "AZURE_PG_CONNECTION"
	EnvEmbeddingModelName  = "EMBEDDING_MODEL_NAME"
	EnvContentRecording    = "AZURE_TRACING_GEN_AI_CONTENT_RECORDING_ENABLED"
	EnvAgentID             = "AGENT_ID"
	EnvProjectAPIVersion   = "PROJECT_API_VERSION"
	EnvProjectAPIKey       = "PROJECT_API_KEY"
	EnvSimilarityThreshold = "CASES_SIMILARITY_THRESHOLD"
	EnvEmbeddingMode       = "CASES_EMBEDDING_MODE"
	EnvPollInterval        = "POLL_INTERVAL"
	EnvPollMaxWait         = "POLL_MAX_WAIT"
	EnvDeleteAgentOnExit   = "DELETE_AGENT_ON_EXIT"
	EnvLogLevel            = "LOG_LEVEL"
	EnvLogFormat           = "LOG_FORMAT"
	EnvTracesExporter      = "OTEL_TRACES_EXPORTER"
	EnvMetricsExporter     = "OTEL_METRICS_EXPORTER"
	EnvServiceName         = "OTEL_SERVICE_NAME"
	EnvOTLPHeaders         = "OTEL_EXPORTER_OTLP_HEADERS"
)

// Embedding modes.
const (
	EmbeddingModeDatabase = "database"
	EmbeddingModeClient   = "client"
)

// Exporter names.
const (
	ExporterNone     = "none"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlphttp"
	ExporterStdout   = "stdout"
)

// Defaults of the optional variables.
const (
	DefaultAgentID             = "asst_mMiZtMQ1euvQtQ7hh56dMT96"
	DefaultAPIVersion          = "2025-01-01-preview"
	DefaultEmbeddingModel      = "text-embedding-ada-002"
	DefaultSimilarityThreshold = 0.8
	DefaultPollInterval        = time.Second
	DefaultPollMaxWait         = 10 * time.Minute
	DefaultEnvFile             = ".env"
)

var (
	// ErrMissingEnv is returned when required variables are not set.
	ErrMissingEnv = errors.New("config: missing required environment variables")
	// ErrInvalidValue is returned when a variable cannot be parsed.
	ErrInvalidValue = errors.New("config: invalid value")
)

// Config is the resolved configuration.
type Config struct {
	ProjectEndpoint     string
	ModelDeploymentName string
	PGConnection        string
	EmbeddingModel      string
	ContentRecording    bool
	AgentID             string
	APIVersion          string
	APIKey              string
	SimilarityThreshold float64
	EmbeddingMode       string
	PollInterval        time.Duration
	PollMaxWait         time.Duration
	DeleteAgentOnExit   bool
	LogLevel            string
	LogFormat           string
	TracesExporter      string
	MetricsExporter     string
	// ServiceName overrides the service.name resource attribute when set.
	ServiceName string
	// OTLPHeaders are sent with every trace and metric export.
	OTLPHeaders map[string]string
}

// AzureEndpoint reports whether ProjectEndpoint is an Azure resource, which
// takes the api-version query parameter and Entra ID tokens.
func (c *Config) AzureEndpoint() bool {
	u, err := url.Parse(c.ProjectEndpoint)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.HasSuffix(host, ".azure.com") || strings.HasSuffix(host, ".azure.us")
}

// Option configures Load.
type Option func(*options)

type options struct {
	envFile string
	lookup  func(string) (string, bool)
}

// WithEnvFile sets the dotenv file to read. An empty path skips the file.
// A missing file is not an error.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// WithLookup replaces the process environment lookup.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

// Load resolves the configuration.
func Load(opts ...Option) (*Config, error) {
	o := &options{envFile: DefaultEnvFile, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}

	fileValues := map[string]string{}
	if o.envFile != "" {
		values, err := godotenv.Read(o.envFile)
		switch {
		case err == nil:
			fileValues = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", o.envFile, err)
		}
	}
	e := &env{lookup: o.lookup, file: fileValues}

	cfg := &Config{
		ProjectEndpoint:     e.required(EnvProjectEndpoint),
		ModelDeploymentName: e.required(EnvModelDeploymentName),
		PGConnection:        e.required(EnvPGConnection),
		EmbeddingModel:      e.str(EnvEmbeddingModelName, DefaultEmbeddingModel),
		ContentRecording:    e.boolean(EnvContentRecording),
		AgentID:             e.str(EnvAgentID, DefaultAgentID),
		APIVersion:          e.str(EnvProjectAPIVersion, DefaultAPIVersion),
		APIKey:              e.str(EnvProjectAPIKey, ""),
		SimilarityThreshold: e.float(EnvSimilarityThreshold, DefaultSimilarityThreshold),
		EmbeddingMode:       e.oneOf(EnvEmbeddingMode, EmbeddingModeDatabase, EmbeddingModeClient),
		PollInterval:        e.duration(EnvPollInterval, DefaultPollInterval),
		PollMaxWait:         e.duration(EnvPollMaxWait, DefaultPollMaxWait),
		DeleteAgentOnExit:   e.boolean(EnvDeleteAgentOnExit),
		LogLevel:            e.str(EnvLogLevel, "info"),
		LogFormat:           e.oneOf(EnvLogFormat, "console", "json"),
		TracesExporter:      e.oneOf(EnvTracesExporter, ExporterNone, ExporterOTLP, ExporterOTLPHTTP, ExporterStdout),
		MetricsExporter:     e.oneOf(EnvMetricsExporter, ExporterNone, ExporterOTLP, ExporterOTLPHTTP),
		ServiceName:         e.str(EnvServiceName, ""),
		OTLPHeaders:         e.headers(EnvOTLPHeaders),
	}
	if len(e.missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(e.missing, ", "))
	}
	if len(e.invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, strings.Join(e.invalid, "; "))
	}
	if cfg.SimilarityThreshold <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", ErrInvalidValue, EnvSimilarityThreshold)
	}
	return cfg, nil
}

// env reads variables and collects every problem so that one error names
// all of them.
type env struct {
	lookup  func(string) (string, bool)
	file    map[string]string
	missing []string
	invalid []string
}

func (e *env) get(key string) (string, bool) {
	if v, ok := e.lookup(key); ok {
		return strings.TrimSpace(v), true
	}
	v, ok := e.file[key]
	return strings.TrimSpace(v), ok
}

func (e *env) required(key string) string {
	v, ok := e.get(key)
	if !ok || v == "" {
		e.missing = append(e.missing, key)
	}
	return v
}

func (e *env) str(key, def string) string {
	if v, ok := e.get(key); ok && v != "" {
		return v
	}
	return def
}

func (e *env) boolean(key string) bool {
	v := e.str(key, "false")
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.invalid = append(e.invalid, fmt.Sprintf("%s=%q", key, v))
	}
	return b
}

func (e *env) float(key string, def float64) float64 {
	v, ok := e.get(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.invalid = append(e.invalid, fmt.Sprintf("%s=%q", key, v))
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.get(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		e.invalid = append(e.invalid, fmt.Sprintf("%s=%q", key, v))
		return def
	}
	return d
}

// oneOf returns the value of key, lower cased, when it is one of allowed.
// The first allowed value is the default.
func (e *env) oneOf(key string, allowed ...string) string {
	v := strings.ToLower(e.str(key, allowed[0]))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	e.invalid = append(e.invalid, fmt.Sprintf("%s=%q (want one of %s)", key, v, strings.Join(allowed, ", ")))
	return allowed[0]
}

// headers parses a comma separated list of key=value pairs with URL encoded
// values, e.g. "api-key=secret,x-tenant=legal".
func (e *env) headers(key string) map[string]string {
	v, ok := e.get(key)
	if !ok || v == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			e.invalid = append(e.invalid, fmt.Sprintf("%s: malformed header %q", key, strings.TrimSpace(pair)))
			return nil
		}
		decoded, err := url.QueryUnescape(strings.TrimSpace(value))
		if err != nil {
			e.invalid = append(e.invalid, fmt.Sprintf("%s: header %s: %v", key, name, err))
			return nil
		}
		out[name] = decoded
	}
	return out
}
