// Package ingestor loads workflow log files into a store, one file per
// transaction. A file with any malformed entry contributes nothing.
package ingestor

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/wflogger/wflogger/pkg/logging"
	"github.com/wflogger/wflogger/pkg/parser"
	"github.com/wflogger/wflogger/pkg/store"
)

// Ingestor parses files and writes their entries to a store.
// An Ingestor is not safe for concurrent use.
type Ingestor struct {
	store  store.Store
	parser *parser.Parser
	logger *log.Logger
	stats  Stats
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(i *Ingestor) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithParser sets the entry parser. The default is parser.New().
func WithParser(p *parser.Parser) Option {
	return func(i *Ingestor) {
		if p != nil {
			i.parser = p
		}
	}
}

// New creates an Ingestor writing to s.
func New(s store.Store, opts ...Option) *Ingestor {
	i := &Ingestor{
		store:  s,
		parser: parser.New(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Stats returns the counters accumulated so far.
func (i *Ingestor) Stats() Stats {
	return i.stats
}

// PrepareDatabase creates the table unless it already exists.
// Store errors are logged and reported as Failed.
func (i *Ingestor) PrepareDatabase(ctx context.Context) Result {
	exists, err := i.store.TableExists(ctx)
	if err != nil {
		return i.failed("prepare", err)
	}
	if exists {
		i.logger.Info().Str("table", store.TableName).Msg("table already exists")
		return Result{Outcome: AlreadyExisted}
	}

	if err := i.store.CreateTable(ctx); err != nil {
		return i.failed("prepare", err)
	}
	i.logger.Info().Str("table", store.TableName).Msg("table created")
	return Result{Outcome: OK}
}

// ResetDatabase deletes every row, keeping the table.
func (i *Ingestor) ResetDatabase(ctx context.Context) Result {
	n, err := i.store.DeleteAll(ctx)
	if err != nil {
		return i.failed("reset", err)
	}
	i.logger.Info().Str("table", store.TableName).Int64("rows", n).Msg("table reset")
	return Result{Outcome: OK, Rows: n}
}

// DropDatabase removes the table.
func (i *Ingestor) DropDatabase(ctx context.Context) Result {
	if err := i.store.DropTable(ctx); err != nil {
		return i.failed("drop", err)
	}
	i.logger.Info().Str("table", store.TableName).Msg("table dropped")
	return Result{Outcome: OK}
}

// TableSize returns the number of stored rows, or -1 if the count fails.
func (i *Ingestor) TableSize(ctx context.Context) int64 {
	n, err := i.store.Count(ctx)
	if err != nil {
		i.logger.Error().Err(err).Str("table", store.TableName).Msg("count failed")
		return -1
	}
	return n
}

// IngestFile loads one file and reports whether it was committed.
func (i *Ingestor) IngestFile(ctx context.Context, path string) bool {
	return i.Ingest(ctx, path).Ok()
}

// Ingest loads one file atomically. Reading stops at the first malformed
// entry and nothing from the file is written.
func (i *Ingestor) Ingest(ctx context.Context, path string) *FileResult {
	res := &FileResult{Path: path, BatchID: uuid.New()}

	entries, lines, err := i.scan(ctx, path)
	res.Lines = lines
	if err == nil && len(entries) == 0 {
		err = ErrEmptyBatch
	}
	if err == nil {
		err = i.store.InsertBatch(ctx, entries)
	}

	if err != nil {
		res.Err = err
		i.stats.FilesFailed++
		i.logFailure(path, res.BatchID, err)
		return res
	}

	res.Entries = len(entries)
	i.stats.FilesIngested++
	i.stats.EntriesIngested += len(entries)
	i.logger.Info().
		Str("path", path).
		Str("batch", res.BatchID.String()).
		Int("entries", res.Entries).
		Msg("file ingested")
	return res
}

// IngestAll ingests paths in order. It stops early only if ctx is
// cancelled between files.
func (i *Ingestor) IngestAll(ctx context.Context, paths []string) []*FileResult {
	results := make([]*FileResult, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		results = append(results, i.Ingest(ctx, path))
	}
	return results
}

// Check parses a file without writing anything or touching the stats.
func (i *Ingestor) Check(ctx context.Context, path string) *FileResult {
	res := &FileResult{Path: path, BatchID: uuid.New()}
	entries, lines, err := i.scan(ctx, path)
	res.Lines = lines
	if err == nil && len(entries) == 0 {
		err = ErrEmptyBatch
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.Entries = len(entries)
	return res
}

// scan reads path and returns its entries and the number of lines read,
// stopping at the first error.
func (i *Ingestor) scan(ctx context.Context, path string) ([]parser.Entry, int, error) {
	src := parser.NewFileSource(path, i.parser)
	defer src.Close()

	entries, err := i.collect(ctx, src)
	return entries, src.Lines(), err
}

// collect parses every marker line of src. Any error discards what was read.
func (i *Ingestor) collect(ctx context.Context, src parser.LineSource) ([]parser.Entry, error) {
	var entries []parser.Entry
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}

		entry, err := i.parser.ParseEntry(line.Payload, line.LineNum)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
}

func (i *Ingestor) logFailure(path string, batch uuid.UUID, err error) {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		i.logger.Error().
			Str("path", path).
			Str("batch", batch.String()).
			Int("line", pe.Line).
			Str("kind", string(pe.Kind)).
			Str("field", pe.Field).
			Str("raw", pe.Raw).
			Msgf("failed to ingest %s: %v", path, err)
		return
	}
	i.logger.Error().
		Str("path", path).
		Str("batch", batch.String()).
		Err(err).
		Msg("failed to ingest " + path)
}

func (i *Ingestor) failed(op string, err error) Result {
	i.logger.Error().Err(err).Str("op", op).Str("table", store.TableName).Msg("database operation failed")
	return Result{Outcome: Failed, Err: err}
}
