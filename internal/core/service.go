package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/csvtables/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service provides the operations exposed by the CLI and the web server.
type Service struct {
	opts    ReaderOptions
	sink    Sink // nil disables Import
	limiter *ImportLimiter
	timeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithReaderOptions sets the CSV options used to split input.
func WithReaderOptions(opts ReaderOptions) ServiceOption {
	return func(s *Service) { s.opts = opts }
}

// WithSink enables Import by setting where records are written.
func WithSink(sink Sink) ServiceOption {
	return func(s *Service) { s.sink = sink }
}

// WithImportLimiter sets the limiter for concurrent imports.
func WithImportLimiter(l *ImportLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithImportTimeout bounds the duration of a single import.
func WithImportTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a new Service instance.
func NewService(options ...ServiceOption) *Service {
	s := &Service{
		opts:    DefaultReaderOptions(),
		limiter: NewImportLimiter(DefaultMaxConcurrentImports, DefaultMaxWaitTime),
		timeout: 10 * time.Minute,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// CanImport reports whether a sink is configured.
func (s *Service) CanImport() bool {
	return s.sink != nil
}

// ImportStatus returns the import limiter state.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Segment splits the delimited text in r into tables.
func (s *Service) Segment(ctx context.Context, name string, r io.Reader) (TableSet, error) {
	counter := NewCountingReader(r)
	src := NewCSVReader(NewBOMSkippingReader(counter), s.opts)

	tables, err := SegmentContext(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", name, err)
	}

	logging.FromContext(ctx).Debug("segmented file",
		"file", name,
		"bytes", counter.BytesRead,
		"tables", len(tables),
		"rows", tables.TotalRows(),
	)
	return tables, nil
}

// Project converts the table at index into records of the named shape.
func (s *Service) Project(ctx context.Context, tables TableSet, index int, shapeKey string) ([]Record, error) {
	p, err := s.project(ctx, tables, Binding{Table: index, Shape: shapeKey})
	if err != nil {
		return nil, err
	}
	return p.Records, nil
}

func (s *Service) project(ctx context.Context, tables TableSet, b Binding) (Projection, error) {
	shape, ok := LookupShape(b.Shape)
	if !ok {
		return Projection{}, fmt.Errorf("%w: %s", ErrUnknownShape, b.Shape)
	}
	table, ok := tables.Get(b.Table)
	if !ok {
		return Projection{}, fmt.Errorf("%w: index %d of %d", ErrTableIndex, b.Table, len(tables))
	}

	records, err := Project(table, shape)
	if err != nil {
		return Projection{}, fmt.Errorf("table %d as %s: %w", b.Table, b.Shape, err)
	}

	logging.FromContext(ctx).Debug("projected table",
		"table", b.Table,
		"shape", b.Shape,
		"records", len(records),
	)
	return Projection{Binding: b, Shape: shape, Records: records}, nil
}

// ProjectAll projects every binding concurrently. Results keep the order of
// bindings. The first failure cancels the rest.
func (s *Service) ProjectAll(ctx context.Context, tables TableSet, bindings []Binding) ([]Projection, error) {
	out := make([]Projection, len(bindings))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bindings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.project(gctx, tables, b)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Import segments r, projects the bound tables and writes the records to
// the sink under one batch ID.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader, bindings []Binding) (*ImportResult, error) {
	if s.sink == nil {
		return nil, ErrStoreDisabled
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("import %s: no table bindings given", fileName)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	batchID := uuid.New().String()
	log := logging.WithFields(ctx, "batch_id", batchID, "file", fileName)
	log.Info("import started", "bindings", len(bindings))

	tables, err := s.Segment(ctx, fileName, r)
	if err != nil {
		log.Warn("import failed", "phase", "segment", "error", err)
		return nil, err
	}

	projections, err := s.ProjectAll(ctx, tables, bindings)
	if err != nil {
		log.Warn("import failed", "phase", "project", "error", err)
		return nil, err
	}

	result := &ImportResult{
		BatchID:  batchID,
		FileName: fileName,
		Tables:   len(tables),
		Imported: make([]ImportedTable, 0, len(projections)),
	}

	for _, p := range projections {
		n, err := s.sink.ImportRecords(ctx, batchID, p.Shape, p.Records)
		if err != nil {
			log.Error("import failed", "phase", "store", "shape", p.Shape.Key, "error", err)
			return nil, fmt.Errorf("store table %d as %s: %w", p.Binding.Table, p.Shape.Key, err)
		}
		result.Imported = append(result.Imported, ImportedTable{
			Table:    p.Binding.Table,
			Shape:    p.Shape.Key,
			Rows:     len(p.Records),
			Inserted: n,
		})
	}

	result.Duration = time.Since(start)
	log.Info("import completed", "tables", len(result.Imported), "duration_ms", result.Duration.Milliseconds())
	return result, nil
}
