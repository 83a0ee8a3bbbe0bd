package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/finvault-ai/semindex/internal/observability"
	"github.com/finvault-ai/semindex/internal/storage"
)

// Indexer is the slice of the vector index the pipeline depends on.
type Indexer interface {
	IndexChunks(ctx context.Context, chunks []storage.Chunk) (int, error)
}

// Pipeline runs the batch, single-pass ingestion: read documents, chunk them,
// hand the chunks to the index.
type Pipeline struct {
	logger    *observability.Logger
	assembler *Assembler
	indexer   Indexer
}

// Request describes one ingestion run. SourcePath may be a file or a
// directory of documents. Progress, when set, is called after each document
// is processed, whether it chunked cleanly or was skipped.
type Request struct {
	SourcePath string
	Domain     storage.Domain
	Progress   func(path string)
}

// Result summarizes an ingestion run.
type Result struct {
	JobID          uuid.UUID
	DocumentsRead  int
	DocumentsFailed int
	ChunksCreated  int
	StartedAt      time.Time
	Duration       time.Duration
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(logger *observability.Logger, assembler *Assembler, indexer Indexer) *Pipeline {
	return &Pipeline{
		logger:    logger,
		assembler: assembler,
		indexer:   indexer,
	}
}

// Ingest processes the source and indexes the resulting chunks. Unreadable
// documents are logged and skipped; ingestion continues with the rest.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		JobID:     uuid.New(),
		StartedAt: time.Now(),
	}

	log := p.logger.WithOperation("ingest")
	log.Info().
		Str("job_id", result.JobID.String()).
		Str("source", req.SourcePath).
		Str("domain", string(req.Domain)).
		Msg("Starting ingestion job")

	paths, err := ResolveSources(req.SourcePath)
	if err != nil {
		return result, err
	}

	// One sequencer for the whole run keeps chunk IDs unique across
	// documents that share a category. ResolveSources returns paths in
	// directory order, so the numbering is deterministic.
	seqs := NewSequencer()

	var pending []storage.Chunk
	for _, path := range paths {
		chunks, err := p.chunkDocument(path, req.Domain, seqs)
		if err != nil {
			result.DocumentsFailed++
			log.Warn().Err(err).Str("path", path).Msg("Skipping document")
		} else {
			result.DocumentsRead++
			pending = append(pending, chunks...)
			log.Debug().
				Str("path", path).
				Int("chunks", len(chunks)).
				Msg("Chunked document")
		}
		if req.Progress != nil {
			req.Progress(path)
		}
	}

	created, err := p.indexer.IndexChunks(ctx, pending)
	if err != nil {
		return result, fmt.Errorf("index chunks: %w", err)
	}
	result.ChunksCreated = created
	result.Duration = time.Since(result.StartedAt)

	log.Info().
		Str("job_id", result.JobID.String()).
		Int("documents", result.DocumentsRead).
		Int("failed", result.DocumentsFailed).
		Int("chunks", result.ChunksCreated).
		Dur("duration", result.Duration).
		Msg("Ingestion job completed")

	return result, nil
}

// chunkDocument loads one source file and assembles its chunks.
func (p *Pipeline) chunkDocument(path string, domain storage.Domain, seqs Sequencer) ([]storage.Chunk, error) {
	doc, err := loadDocument(path, domain)
	if err != nil {
		return nil, err
	}
	return p.assembler.Assemble(*doc, seqs)
}

// ResolveSources expands a path into the sorted list of document files to
// ingest. A file path resolves to itself; a directory resolves to its .txt
// and .md entries.
func ResolveSources(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".txt", ".md":
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no ingestible documents in %s", path)
	}
	return paths, nil
}

// loadDocument reads one source file into an immutable Document.
func loadDocument(path string, domain storage.Domain) (*storage.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document %s is empty", path)
	}
	return &storage.Document{
		Source: path,
		Domain: domain,
		Text:   string(data),
	}, nil
}
