package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

var lotShape = Shape{
	Key: "lot",
	Fields: []FieldSpec{
		{Name: "symbol", Aliases: []string{"Symbol"}, Type: FieldText, Required: true},
		{Name: "cost", Aliases: []string{"Cost Basis"}, Type: FieldNumeric, Required: true},
	},
}

func registerTestShapes() {
	RegisterShape(holdingShape)
	RegisterShape(lotShape)
}

func init() {
	registerTestShapes()
}

const twoTables = "Symbol,Shares\nVTSAX,10\nVMFXX,2.5\n\n\n\nSymbol,Cost Basis\nVTSAX,1000\n"

type fakeSink struct {
	mu      sync.Mutex
	batches map[string]int
	shapes  []string
	err     error
}

func (f *fakeSink) ImportRecords(ctx context.Context, batchID string, shape Shape, records []Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}
	if f.batches == nil {
		f.batches = make(map[string]int)
	}
	f.batches[batchID] += len(records)
	f.shapes = append(f.shapes, shape.Key)
	return int64(len(records)), nil
}

func TestService_Segment(t *testing.T) {
	svc := NewService()

	tables, err := svc.Segment(context.Background(), "two.csv", strings.NewReader(twoTables))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(tables) != 2 || tables.TotalRows() != 3 {
		t.Errorf("got %d tables with %d rows, want 2 with 3", len(tables), tables.TotalRows())
	}
}

func TestService_Segment_Delimiter(t *testing.T) {
	svc := NewService(WithReaderOptions(ReaderOptions{Comma: ';'}))

	tables, err := svc.Segment(context.Background(), "semi.csv", strings.NewReader("a;b\n1;2\n"))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(tables[0].Header) != 2 {
		t.Errorf("header = %q, want two columns", tables[0].Header)
	}
}

func TestService_Segment_StreamError(t *testing.T) {
	svc := NewService()

	_, err := svc.Segment(context.Background(), "bad.csv", strings.NewReader("a\n\xff\n"))
	if !errors.Is(err, ErrStream) {
		t.Errorf("error = %v, want ErrStream", err)
	}
}

func TestService_Project(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	tables, err := svc.Segment(ctx, "two.csv", strings.NewReader(twoTables))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	tests := []struct {
		name    string
		index   int
		shape   string
		wantLen int
		wantErr error
	}{
		{name: "first table", index: 0, shape: "holding", wantLen: 2},
		{name: "second table", index: 1, shape: "lot", wantLen: 1},
		{name: "wrong shape for table", index: 1, shape: "holding", wantErr: ErrFieldMissing},
		{name: "unknown shape", index: 0, shape: "widget", wantErr: ErrUnknownShape},
		{name: "index out of range", index: 2, shape: "holding", wantErr: ErrTableIndex},
		{name: "negative index", index: -1, shape: "holding", wantErr: ErrTableIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := svc.Project(ctx, tables, tt.index, tt.shape)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Project() error = %v", err)
			}
			if len(records) != tt.wantLen {
				t.Errorf("got %d records, want %d", len(records), tt.wantLen)
			}
		})
	}
}

func TestService_ProjectAll_KeepsOrder(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	tables, err := svc.Segment(ctx, "two.csv", strings.NewReader(twoTables))
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	got, err := svc.ProjectAll(ctx, tables, []Binding{{1, "lot"}, {0, "holding"}})
	if err != nil {
		t.Fatalf("ProjectAll() error = %v", err)
	}
	if got[0].Shape.Key != "lot" || got[1].Shape.Key != "holding" {
		t.Errorf("order = %s, %s; want lot, holding", got[0].Shape.Key, got[1].Shape.Key)
	}
	if got[1].Records[1].Number("shares") != 2.5 {
		t.Errorf("shares = %v, want 2.5", got[1].Records[1].Number("shares"))
	}

	if _, err := svc.ProjectAll(ctx, tables, []Binding{{0, "holding"}, {0, "lot"}}); !errors.Is(err, ErrFieldMissing) {
		t.Errorf("error = %v, want ErrFieldMissing", err)
	}
}

func TestService_Import(t *testing.T) {
	sink := &fakeSink{}
	svc := NewService(WithSink(sink))

	result, err := svc.Import(context.Background(), "two.csv", strings.NewReader(twoTables),
		[]Binding{{0, "holding"}, {1, "lot"}})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if result.BatchID == "" {
		t.Error("BatchID is empty")
	}
	if result.Tables != 2 || len(result.Imported) != 2 {
		t.Errorf("result = %+v", result)
	}
	if result.Imported[0].Inserted != 2 || result.Imported[1].Inserted != 1 {
		t.Errorf("inserted = %d, %d; want 2, 1", result.Imported[0].Inserted, result.Imported[1].Inserted)
	}
	if sink.batches[result.BatchID] != 3 {
		t.Errorf("sink received %d records under the batch, want 3", sink.batches[result.BatchID])
	}
	if svc.ImportStatus().Active != 0 {
		t.Error("import slot not released")
	}
}

func TestService_Import_Errors(t *testing.T) {
	bindings := []Binding{{0, "holding"}}

	t.Run("no sink", func(t *testing.T) {
		svc := NewService()
		if svc.CanImport() {
			t.Error("CanImport() = true without a sink")
		}
		_, err := svc.Import(context.Background(), "x.csv", strings.NewReader(twoTables), bindings)
		if !errors.Is(err, ErrStoreDisabled) {
			t.Errorf("error = %v, want ErrStoreDisabled", err)
		}
	})

	t.Run("no bindings", func(t *testing.T) {
		svc := NewService(WithSink(&fakeSink{}))
		if _, err := svc.Import(context.Background(), "x.csv", strings.NewReader(twoTables), nil); err == nil {
			t.Error("Import() with no bindings returned nil error")
		}
	})

	t.Run("projection failure writes nothing", func(t *testing.T) {
		sink := &fakeSink{}
		svc := NewService(WithSink(sink))
		_, err := svc.Import(context.Background(), "x.csv", strings.NewReader(twoTables),
			[]Binding{{0, "holding"}, {1, "holding"}})
		if !errors.Is(err, ErrFieldMissing) {
			t.Errorf("error = %v, want ErrFieldMissing", err)
		}
		if len(sink.shapes) != 0 {
			t.Errorf("sink received %v, want nothing", sink.shapes)
		}
	})

	t.Run("sink failure", func(t *testing.T) {
		boom := errors.New("connection reset by peer")
		svc := NewService(WithSink(&fakeSink{err: boom}))
		_, err := svc.Import(context.Background(), "x.csv", strings.NewReader(twoTables), bindings)
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want sink error", err)
		}
	})

	t.Run("limiter full", func(t *testing.T) {
		limiter := NewImportLimiter(1, 10*time.Millisecond)
		if err := limiter.Acquire(context.Background()); err != nil {
			t.Fatal(err)
		}
		defer limiter.Release()

		svc := NewService(WithSink(&fakeSink{}), WithImportLimiter(limiter))
		_, err := svc.Import(context.Background(), "x.csv", strings.NewReader(twoTables), bindings)
		if !errors.Is(err, ErrTooManyImports) {
			t.Errorf("error = %v, want ErrTooManyImports", err)
		}
	})
}
