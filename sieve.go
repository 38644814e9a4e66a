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


package sieve

import (
	"log/slog"

	"github.com/sievedata/sieve/ai"
	"github.com/sievedata/sieve/ai/openai"
	"github.com/sievedata/sieve/ingest"
	"github.com/sievedata/sieve/storage"
	"github.com/sievedata/sieve/storage/badger"
	"github.com/sievedata/sieve/vectorize"
)

// Console is the top-level handle on a Sieve database.
// It opens the storage backend, wires the repositories and the embedding
// provider, and hands out the pipeline services built on them.
type Console struct {
	backend    *badger.Backend
	jobRepo    storage.JobRepository
	recordRepo storage.RecordRepository
	provider   ai.AIProvider
	logger     *slog.Logger
}

// ConsoleOption configures a Console.
type ConsoleOption func(*consoleOptions)

type consoleOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) ConsoleOption {
	return func(o *consoleOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built provider, bypassing the OpenAI client.
// Used by tests to run the pipeline against a mock embedder.
func WithAIProvider(provider ai.AIProvider) ConsoleOption {
	return func(o *consoleOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the backend in memory, ignoring the file path.
func WithInMemory() ConsoleOption {
	return func(o *consoleOptions) {
		o.inMemory = true
	}
}

// Open opens (creating if needed) a Sieve database at the given path.
func Open(filePath string, opts ...ConsoleOption) (*Console, error) {
	options := &consoleOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	jobRepo, err := badger.NewJobRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	recordRepo, err := badger.NewRecordRepository(backend)
	if err != nil {
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			recordRepo.Close()
			jobRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Console{
		backend:    backend,
		jobRepo:    jobRepo,
		recordRepo: recordRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

// Close shuts the console down: provider first, then repositories, then the
// backend.
func (c *Console) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	if err := c.recordRepo.Close(); err != nil {
		c.logger.Error("error closing record repository", "err", err)
		return err
	}
	if err := c.jobRepo.Close(); err != nil {
		c.logger.Error("error closing job repository", "err", err)
		return err
	}

	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Console) JobRepository() storage.JobRepository {
	return c.jobRepo
}

func (c *Console) RecordRepository() storage.RecordRepository {
	return c.recordRepo
}

// NewWorker builds an embedding backfill worker over this console's
// repositories. A nil config uses vectorize.DefaultConfig.
func (c *Console) NewWorker(config *vectorize.Config, opts ...vectorize.Option) *vectorize.Worker {
	return vectorize.NewWorker(c.recordRepo, c.provider.Embedder(), config, opts...)
}

// NewIngestService builds the ingestion service over this console's
// repositories, with its own backfill worker.
func (c *Console) NewIngestService(opts ...ingest.Option) (*ingest.Service, error) {
	return ingest.NewService(c.jobRepo, c.recordRepo, c.NewWorker(nil), opts...)
}
