//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) Option {
	return WithLookup(func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	})
}

func required() map[string]string {
	return map[string]string{
		EnvProjectEndpoint:     "https://legal.openai.azure.com",
		EnvModelDeploymentName: "gpt-4o",
		EnvPGConnection:        "host=db user=u password=p dbname=cases",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithEnvFile(""), mapLookup(required()))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.ModelDeploymentName)
	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultAgentID, cfg.AgentID)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultSimilarityThreshold, cfg.SimilarityThreshold)
	assert.Equal(t, EmbeddingModeDatabase, cfg.EmbeddingMode)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultPollMaxWait, cfg.PollMaxWait)
	assert.False(t, cfg.ContentRecording)
	assert.False(t, cfg.DeleteAgentOnExit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, ExporterNone, cfg.TracesExporter)
	assert.Equal(t, ExporterNone, cfg.MetricsExporter)
	assert.Empty(t, cfg.ServiceName)
	assert.Nil(t, cfg.OTLPHeaders)
}

func TestLoad_Overrides(t *testing.T) {
	env := required()
	env[EnvContentRecording] = "true"
	env[EnvSimilarityThreshold] = "0.65"
	env[EnvEmbeddingMode] = "Client"
	env[EnvPollInterval] = "250ms"
	env[EnvPollMaxWait] = "2m"
	env[EnvDeleteAgentOnExit] = "1"
	env[EnvTracesExporter] = "stdout"
	env[EnvAgentID] = "asst_other"
	env[EnvServiceName] = "legal-agent-prod"
	env[EnvOTLPHeaders] = "api-key=s%3Dcret, x-tenant=legal"

	cfg, err := Load(WithEnvFile(""), mapLookup(env))
	require.NoError(t, err)
	assert.True(t, cfg.ContentRecording)
	assert.Equal(t, 0.65, cfg.SimilarityThreshold)
	assert.Equal(t, EmbeddingModeClient, cfg.EmbeddingMode)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.PollMaxWait)
	assert.True(t, cfg.DeleteAgentOnExit)
	assert.Equal(t, ExporterStdout, cfg.TracesExporter)
	assert.Equal(t, "asst_other", cfg.AgentID)
	assert.Equal(t, "legal-agent-prod", cfg.ServiceName)
	assert.Equal(t, map[string]string{"api-key": "s=cret", "x-tenant": "legal"}, cfg.OTLPHeaders)
}

func TestLoad_MissingNamesEveryKey(t *testing.T) {
	_, err := Load(WithEnvFile(""), mapLookup(map[string]string{EnvModelDeploymentName: "gpt-4o", EnvPGConnection: " "}))
	require.ErrorIs(t, err, ErrMissingEnv)
	assert.ErrorContains(t, err, EnvProjectEndpoint)
	assert.ErrorContains(t, err, EnvPGConnection)
	assert.NotContains(t, err.Error(), EnvModelDeploymentName)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvContentRecording, "maybe"},
		{EnvSimilarityThreshold, "high"},
		{EnvSimilarityThreshold, "-1"},
		{EnvEmbeddingMode, "remote"},
		{EnvPollInterval, "soon"},
		{EnvPollMaxWait, "-5s"},
		{EnvTracesExporter, "zipkin"},
		{EnvMetricsExporter, "stdout"},
		{EnvOTLPHeaders, "api-key"},
		{EnvOTLPHeaders, "=value"},
		{EnvOTLPHeaders, "api-key=%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			env := required()
			env[tt.key] = tt.value
			_, err := Load(WithEnvFile(""), mapLookup(env))
			require.ErrorIs(t, err, ErrInvalidValue)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PROJECT_ENDPOINT=https://from-file\n"+
			"MODEL_DEPLOYMENT_NAME=gpt-4o-mini\n"+
			"AZURE_PG_CONNECTION=postgres://u:p@db/cases\n"), 0o600))

	cfg, err := Load(WithEnvFile(path), mapLookup(map[string]string{EnvModelDeploymentName: "gpt-4o"}))
	require.NoError(t, err)
	assert.Equal(t, "https://from-file", cfg.ProjectEndpoint)
	assert.Equal(t, "gpt-4o", cfg.ModelDeploymentName)
	assert.Equal(t, "postgres://u:p@db/cases", cfg.PGConnection)

	_, err = Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), mapLookup(required()))
	require.NoError(t, err)
}

func TestConfig_AzureEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"https://legal.openai.azure.com", true},
		{"https://legal.services.ai.azure.com/api/projects/cases", true},
		{"https://legal.openai.azure.us/", true},
		{"https://api.openai.com/v1", false},
		{"http://localhost:8080/v1", false},
	}
	for _, tt := range tests {
		c := &Config{ProjectEndpoint: tt.endpoint}
		assert.Equal(t, tt.want, c.AzureEndpoint(), tt.endpoint)
	}
}
