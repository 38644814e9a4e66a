// Copyright 2025 Sieve Data
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sievedata/sieve"
	"github.com/sievedata/sieve/ai"
	"github.com/sievedata/sieve/ai/openai"
	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/storage/badger"
	"github.com/sievedata/sieve/vectorize"
)

func main() {
	app := &cli.App{
		Name:  "sieve",
		Usage: "Durable ingestion and vectorization pipeline for task and feedback data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Queue a CSV or JSON payload for ingestion",
				Action: ingestCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the CSV or JSON payload file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Payload format (csv, json); inferred from the file extension if omitted",
					},
					&cli.StringFlag{
						Name:    "environment",
						Aliases: []string{"e"},
						Usage:   "Target environment (inferred from the payload if omitted)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Record type (task, feedback); inferred from the payload if omitted",
					},
					&cli.StringSliceFlag{
						Name:  "keyword",
						Usage: "Keep only rows whose content matches at least one keyword (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "embed",
						Usage: "Generate embeddings after persisting",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Drain the queue and wait for the job to finish",
					},
				),
			},
			{
				Name:   "process",
				Usage:  "Advance queued jobs through both pipeline phases",
				Action: processCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:    "environment",
						Aliases: []string{"e"},
						Usage:   "Environment to process (all active environments if omitted)",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show a job's status, or list jobs",
				Action: statusCommand,
				Flags: append(dbFlags(),
					&cli.Uint64Flag{
						Name:    "job",
						Aliases: []string{"j"},
						Usage:   "Job ID to inspect (lists jobs if omitted)",
					},
					&cli.StringFlag{
						Name:    "environment",
						Aliases: []string{"e"},
						Usage:   "Restrict the job listing to one environment",
					},
				),
			},
			{
				Name:   "cancel",
				Usage:  "Cancel an active job",
				Action: cancelCommand,
				Flags: append(dbFlags(),
					&cli.Uint64Flag{
						Name:     "job",
						Aliases:  []string{"j"},
						Usage:    "Job ID to cancel",
						Required: true,
					},
				),
			},
			{
				Name:   "delete",
				Usage:  "Delete every record a job ingested",
				Action: deleteCommand,
				Flags: append(dbFlags(),
					&cli.Uint64Flag{
						Name:     "job",
						Aliases:  []string{"j"},
						Usage:    "Job whose records to delete",
						Required: true,
					},
				),
			},
			{
				Name:   "vectorize",
				Usage:  "Backfill embeddings for an environment",
				Action: vectorizeCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:     "environment",
						Aliases:  []string{"e"},
						Usage:    "Environment to backfill",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records per embedding call",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Embed attempts per record before it is permanently skipped",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "failure-backoff",
						Usage: "Pause after a fully failed batch",
						Value: 2 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "embed-timeout",
						Usage: "Timeout for a single embedding call",
						Value: 60 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the embedding service",
			EnvVars: []string{"SIEVE_API_TOKEN"},
			Value:   "none",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
}

func openConsole(c *cli.Context) (*sieve.Console, error) {
	console, err := sieve.Open(c.String("db"), sieve.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return console, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	file := c.String("file")
	payload, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	kind, err := resolveKind(c.String("format"), file)
	if err != nil {
		return err
	}

	recordType, err := resolveType(c.String("type"))
	if err != nil {
		return err
	}

	console, err := openConsole(c)
	if err != nil {
		return err
	}
	defer console.Close()

	service, err := console.NewIngestService()
	if err != nil {
		return err
	}
	defer service.Release()

	id, err := service.StartBackgroundIngest(ctx, kind, string(payload), core.IngestOptions{
		Source:             filepath.Base(file),
		Environment:        c.String("environment"),
		Type:               recordType,
		FilterKeywords:     c.StringSlice("keyword"),
		GenerateEmbeddings: c.Bool("embed"),
	})
	if err != nil {
		return fmt.Errorf("failed to queue ingestion: %w", err)
	}

	fmt.Printf("Queued job %d\n", id)

	if !c.Bool("wait") {
		return nil
	}

	for {
		job, err := service.GetIngestStatus(ctx, id)
		if err != nil {
			return err
		}
		if job.Status.IsTerminal() {
			printJob(job)
			if job.Status != core.JobStatusCompleted {
				return fmt.Errorf("job finished with status %s", job.Status)
			}
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func processCommand(c *cli.Context) error {
	console, err := openConsole(c)
	if err != nil {
		return err
	}
	defer console.Close()

	service, err := console.NewIngestService()
	if err != nil {
		return err
	}
	defer service.Release()

	if err := service.ProcessQueuedJobs(context.Background(), c.String("environment")); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	console, err := openConsole(c)
	if err != nil {
		return err
	}
	defer console.Close()

	if id := c.Uint64("job"); id != 0 {
		service, err := console.NewIngestService()
		if err != nil {
			return err
		}
		defer service.Release()

		job, err := service.GetIngestStatus(ctx, core.ID(id))
		if err != nil {
			return err
		}
		printJob(job)
		return nil
	}

	jobs, err := console.JobRepository().ListJobs(ctx, c.String("environment"))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}
	for _, job := range jobs {
		fmt.Printf("%-6d %-12s %-16s saved=%d skipped=%d total=%d\n",
			job.Id, job.Environment, job.Status, job.SavedCount, job.SkippedCount, job.TotalRecords)
	}
	return nil
}

func cancelCommand(c *cli.Context) error {
	console, err := openConsole(c)
	if err != nil {
		return err
	}
	defer console.Close()

	service, err := console.NewIngestService()
	if err != nil {
		return err
	}
	defer service.Release()

	job, err := service.CancelIngest(context.Background(), core.ID(c.Uint64("job")))
	if err != nil {
		return err
	}
	fmt.Printf("Job %d is now %s\n", job.Id, job.Status)
	return nil
}

func deleteCommand(c *cli.Context) error {
	console, err := openConsole(c)
	if err != nil {
		return err
	}
	defer console.Close()

	service, err := console.NewIngestService()
	if err != nil {
		return err
	}
	defer service.Release()

	deleted, err := service.DeleteIngestedData(context.Background(), core.ID(c.Uint64("job")))
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d records\n", deleted)
	return nil
}

func vectorizeCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewRecordRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	embedder, err := openai.NewEmbedder(aiConfigFromFlags(c))
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &vectorize.Config{
		BatchSize:      c.Int("batch-size"),
		MaxAttempts:    c.Int("max-attempts"),
		FailureBackoff: c.Duration("failure-backoff"),
		EmbedTimeout:   c.Duration("embed-timeout"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0")
	}

	environment := c.String("environment")
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Environment: %s\n", environment)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	worker := vectorize.NewWorker(repo, embedder, config, vectorize.WithProgress(os.Stderr))
	stats, err := worker.Run(ctx, environment, nil)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Backfill complete: %d embedded, %d permanently skipped\n",
		stats.Embedded, stats.Marked)
	return nil
}

func resolveKind(format, file string) (core.SourceKind, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(file), ".")
	}
	switch strings.ToLower(format) {
	case "csv":
		return core.SourceKindCSV, nil
	case "json":
		return core.SourceKindAPI, nil
	default:
		return 0, fmt.Errorf("unknown payload format %q: must be csv or json", format)
	}
}

func resolveType(value string) (core.RecordType, error) {
	switch strings.ToLower(value) {
	case "":
		return 0, nil
	case "task":
		return core.RecordTypeTask, nil
	case "feedback":
		return core.RecordTypeFeedback, nil
	default:
		return 0, fmt.Errorf("unknown record type %q: must be task or feedback", value)
	}
}

func printJob(job *core.IngestJob) {
	fmt.Printf("Job:         %d\n", job.Id)
	fmt.Printf("Environment: %s\n", job.Environment)
	fmt.Printf("Type:        %s\n", job.Type)
	fmt.Printf("Status:      %s\n", job.Status)
	fmt.Printf("Records:     %d total, %d saved, %d skipped\n",
		job.TotalRecords, job.SavedCount, job.SkippedCount)
	for reason, count := range job.SkippedDetails {
		fmt.Printf("  %s: %d\n", reason, count)
	}
	if job.Error != "" {
		fmt.Printf("Error:       %s\n", job.Error)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
