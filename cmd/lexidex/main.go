// Copyright 2025 Poiesic Systems
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
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lexidex"
	"github.com/poiesic/lexidex/ai"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/reembed"
)

func main() {
	app := &cli.App{
		Name:   "lexidex",
		Usage:  "Legal document ingestion and hybrid search",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the document database directory",
				Value:   "./lexidex_db",
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
				Name:  "vision-host",
				Usage: "Vision service host URL (defaults to embedding-host)",
			},
			&cli.StringFlag{
				Name:  "vision-model",
				Usage: "Vision model name for page transcription",
				Value: "qwen2.5vl:7b",
			},
			&cli.StringFlag{
				Name:  "backends",
				Usage: "Comma-separated extraction fallback chain",
				Value: lexidex.DefaultBackendChain,
			},
			&cli.StringFlag{
				Name:  "ocr-languages",
				Usage: "Tesseract language list, e.g. eng+hin",
				Value: "eng",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a scanned document (directory of page images, or a single image)",
				ArgsUsage: "PATH...",
				Action:    ingestCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the indexed corpus",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show corpus counters and the document list",
				Action: statusCommand,
			},
			{
				Name:      "remove",
				Usage:     "Remove a document and everything derived from it",
				ArgsUsage: "DOCUMENT_ID",
				Action:    removeCommand,
			},
			{
				Name:      "text",
				Usage:     "Print a document's reassembled text",
				ArgsUsage: "DOCUMENT_ID",
				Action:    textCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild every chunk's index entry with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(ctx context.Context, c *cli.Context) (*lexidex.Database, error) {
	visionHost := c.String("vision-host")
	if visionHost == "" {
		visionHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithVisionHost(visionHost),
		ai.WithVisionModel(c.String("vision-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return lexidex.NewDatabase(ctx, c.String("db"),
		lexidex.WithAIConfig(aiConfig),
		lexidex.WithBackendChain(c.String("backends")),
		lexidex.WithOCRLanguages(c.String("ocr-languages")),
	)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one document path is required")
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range c.Args().Slice() {
		id, err := db.Ingest(ctx, path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		fmt.Printf("%d\t%s\n", id, path)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Search(ctx, query, c.Int("limit"))
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		label := hit.Chunk.SectionLabel
		if label == "" {
			label = fmt.Sprintf("chunk %d", hit.Chunk.Ordinal)
		}
		fmt.Printf("%d: [%.3f] doc %d, %s\n", i+1, hit.Score, hit.Chunk.DocumentId, label)
		fmt.Printf("   %s\n", excerpt(hit.Chunk.Text, 200))
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()
	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := db.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Documents: %d\nChunks: %d\nStore size: %d bytes\n",
		status.DocumentCount, status.ChunkCount, status.IndexSize)

	documents, err := db.Documents(ctx)
	if err != nil {
		return err
	}
	for _, document := range documents {
		fmt.Printf("%d\t%d pages\t%s\t%s\n",
			document.Id, document.PageCount,
			document.CreatedAt.Format(time.RFC3339), document.SourcePath)
	}
	return nil
}

func removeCommand(c *cli.Context) error {
	id, err := parseDocumentID(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Printf("removed %d\n", id)
	return nil
}

func textCommand(c *cli.Context) error {
	id, err := parseDocumentID(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	text, err := db.DocumentText(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	if err := db.NewReembedder(config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func parseDocumentID(c *cli.Context) (core.ID, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("exactly one document ID is required")
	}
	raw, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document ID %q: %w", c.Args().First(), err)
	}
	return core.ID(raw), nil
}

func excerpt(text string, max int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
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
