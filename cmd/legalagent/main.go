//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Command legalagent asks a remote assistant about legal precedents. The
// assistant answers with two local tools that search and count cases in a
// Postgres table through vector similarity.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trpc.group/trpc-go/trpc-legal-agent-go/agent"
	"trpc.group/trpc-go/trpc-legal-agent-go/agent/assistants"
	"trpc.group/trpc-go/trpc-legal-agent-go/caselaw"
	"trpc.group/trpc-go/trpc-legal-agent-go/config"
	itelemetry "trpc.group/trpc-go/trpc-legal-agent-go/internal/telemetry"
	openaiembedder "trpc.group/trpc-go/trpc-legal-agent-go/knowledge/embedder/openai"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
	"trpc.group/trpc-go/trpc-legal-agent-go/runner"
	"trpc.group/trpc-go/trpc-legal-agent-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-legal-agent-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool/legal"
)

const defaultMessage = "Water leaking into the apartment from the floor above. " +
	"What are the prominent legal precedents in Washington on this problem in the last 10 years?"

var (
	envFile  = flag.String("env-file", config.DefaultEnvFile, "dotenv file to load, empty to skip")
	message  = flag.String("message", defaultMessage, "request posted to the agent")
	logLevel = flag.String("log-level", "", "log level, overrides LOG_LEVEL")
)

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("legalagent: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(config.WithEnvFile(*envFile))
	if err != nil {
		return err
	}
	log.SetFormat(cfg.LogFormat)
	log.SetLevel(cfg.LogLevel)
	if *logLevel != "" {
		log.SetLevel(*logLevel)
	}

	shutdown, err := startTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	conn := assistants.Connection{Endpoint: cfg.ProjectEndpoint, APIKey: cfg.APIKey}
	if cfg.AzureEndpoint() {
		conn.APIVersion = cfg.APIVersion
	}
	reqOpts, err := conn.RequestOptions()
	if err != nil {
		return err
	}

	storeOpts := []caselaw.Option{
		caselaw.WithConnString(cfg.PGConnection),
		caselaw.WithEmbeddingModel(cfg.EmbeddingModel),
		caselaw.WithSimilarityThreshold(cfg.SimilarityThreshold),
	}
	if cfg.EmbeddingMode == config.EmbeddingModeClient {
		storeOpts = append(storeOpts, caselaw.WithEmbedder(openaiembedder.New(
			openaiembedder.WithModel(cfg.EmbeddingModel),
			openaiembedder.WithRequestOptions(reqOpts...),
		)))
	}
	store, err := caselaw.New(storeOpts...)
	if err != nil {
		return err
	}

	toolSet := legal.NewToolSet(store, legal.WithContentRecording(cfg.ContentRecording))
	defer toolSet.Close()
	registry, err := tool.NewRegistryFromToolSets(ctx, []tool.ToolSet{toolSet},
		tool.WithContentRecording(cfg.ContentRecording))
	if err != nil {
		return err
	}

	r, err := runner.New(assistants.New(reqOpts...), registry,
		runner.WithConfig(runner.DefaultConfig().
			WithAgentID(cfg.AgentID).
			WithModel(cfg.ModelDeploymentName).
			WithPolling(cfg.PollInterval, cfg.PollMaxWait)),
		runner.WithDeleteCreatedAgent(cfg.DeleteAgentOnExit),
	)
	if err != nil {
		return err
	}

	res, err := r.Run(ctx, *message)
	if res != nil {
		printTranscript(os.Stdout, res.Messages)
	}
	if err != nil {
		return err
	}
	if res.Err != nil {
		log.Warnf("Run %s ended early: %v", res.RunID, res.Err)
	}
	return nil
}

// printTranscript writes one line per message, oldest first.
func printTranscript(w io.Writer, messages []agent.Message) {
	title := cases.Title(language.English)
	for _, m := range messages {
		fmt.Fprintf(w, "Role: %s, Content: %s\n", title.String(string(m.Role)), m.Content)
	}
}

func startTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	var cleanups []func() error
	shutdown := func() {
		for _, clean := range cleanups {
			if err := clean(); err != nil {
				log.Warnf("telemetry shutdown: %v", err)
			}
		}
	}

	if protocol, ok := exporterProtocol(cfg.TracesExporter); ok {
		opts := []trace.Option{trace.WithProtocol(protocol), trace.WithHeaders(cfg.OTLPHeaders)}
		if cfg.ServiceName != "" {
			opts = append(opts, trace.WithServiceName(cfg.ServiceName))
		}
		clean, err := trace.Start(ctx, opts...)
		if err != nil {
			return nil, err
		}
		cleanups = append(cleanups, clean)
	}
	if protocol, ok := exporterProtocol(cfg.MetricsExporter); ok {
		opts := []metric.Option{metric.WithProtocol(protocol), metric.WithHeaders(cfg.OTLPHeaders)}
		if cfg.ServiceName != "" {
			opts = append(opts, metric.WithServiceName(cfg.ServiceName))
		}
		clean, err := metric.Start(ctx, opts...)
		if err != nil {
			shutdown()
			return nil, err
		}
		cleanups = append(cleanups, clean)
	}
	return shutdown, nil
}

func exporterProtocol(exporter string) (string, bool) {
	switch exporter {
	case config.ExporterOTLP:
		return itelemetry.ProtocolGRPC, true
	case config.ExporterOTLPHTTP:
		return itelemetry.ProtocolHTTP, true
	case config.ExporterStdout:
		return trace.ProtocolStdout, true
	default:
		return "", false
	}
}
