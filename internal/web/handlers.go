package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/JonMunkholm/csvtables/internal/export"
	"github.com/JonMunkholm/csvtables/internal/logging"
	"github.com/JonMunkholm/csvtables/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// maxMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const maxMemory = 32 << 20

var errInvalidRequest = errors.New("invalid request")

// ShapeInfo describes a registered shape for API clients.
type ShapeInfo struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Fields []FieldInfo `json:"fields"`
}

// FieldInfo describes one shape field.
type FieldInfo struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
}

// TableSummary describes one segmented table.
type TableSummary struct {
	Index  int      `json:"index"`
	Header core.Row `json:"header"`
	Rows   int      `json:"rows"`
}

// ProjectResponse is returned by the projection endpoint.
type ProjectResponse struct {
	Table   int           `json:"table"`
	Shape   string        `json:"shape"`
	Count   int           `json:"count"`
	Records []core.Record `json:"records"`
}

// handleListShapes returns every registered shape.
func (s *Server) handleListShapes(w http.ResponseWriter, r *http.Request) {
	shapes := core.Shapes()
	out := make([]ShapeInfo, 0, len(shapes))
	for _, sh := range shapes {
		info := ShapeInfo{Key: sh.Key, Label: sh.Label, Fields: make([]FieldInfo, 0, len(sh.Fields))}
		for _, f := range sh.Fields {
			info.Fields = append(info.Fields, FieldInfo{
				Name:     f.Name,
				Aliases:  f.Aliases,
				Type:     f.Type.String(),
				Required: f.Required,
			})
		}
		out = append(out, info)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleStatus reports whether imports are enabled and the limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"importEnabled": s.service.CanImport(),
		"imports":       s.service.ImportStatus(),
		"shapes":        core.ShapeCount(),
	})
}

// handleTables segments the uploaded file and summarizes each table.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	name, tables, err := s.readTables(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	summaries := make([]TableSummary, len(tables))
	for i, t := range tables {
		summaries[i] = TableSummary{Index: i, Header: t.Header, Rows: len(t.Rows)}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"file":   name,
		"tables": summaries,
	})
}

// handlePreview renders every table of the uploaded file as HTML.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name, tables, err := s.readTables(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Preview(name, tables).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render preview", "error", err)
	}
}

// handleProject projects one table of the uploaded file onto a shape.
func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	shapeKey := chi.URLParam(r, "shapeKey")

	index, err := tableParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	_, tables, err := s.readTables(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records, err := s.service.Project(r.Context(), tables, index, shapeKey)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ProjectResponse{
		Table:   index,
		Shape:   shapeKey,
		Count:   len(records),
		Records: records,
	})
}

// handleExport returns the uploaded file as an XLSX workbook. With bind
// parameters the sheets hold projected records, otherwise raw tables.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	bindings, err := bindParams(r, false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, tables, err := s.readTables(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var projections []core.Projection
	if len(bindings) > 0 {
		projections, err = s.service.ProjectAll(r.Context(), tables, bindings)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, xlsxName(name)))

	if projections != nil {
		err = export.WriteRecords(w, projections)
	} else {
		err = export.WriteTables(w, tables)
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("write workbook", "file", name, "error", err)
	}
}

// handleImport stores the bound tables of the uploaded file.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.service.CanImport() {
		s.respondError(w, r, core.ErrStoreDisabled)
		return
	}

	bindings, err := bindParams(r, true)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	file, header, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.Import(r.Context(), header.Filename, file, bindings)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// readUpload extracts the "file" part of a size-limited multipart request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return nil, nil, fmt.Errorf("file too large: %w", err)
		}
		return nil, nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}
	return file, header, nil
}

// readTables reads the uploaded file and segments it.
func (s *Server) readTables(w http.ResponseWriter, r *http.Request) (string, core.TableSet, error) {
	file, header, err := s.readUpload(w, r)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	tables, err := s.service.Segment(r.Context(), header.Filename, file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, tables, nil
}

// tableParam parses the "table" query parameter, default 0.
func tableParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("table")
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: table must be an integer", errInvalidRequest)
	}
	return i, nil
}

// bindParams parses repeated "bind=TABLE:SHAPE" query parameters.
func bindParams(r *http.Request, required bool) ([]core.Binding, error) {
	values := r.URL.Query()["bind"]
	if len(values) == 0 {
		if required {
			return nil, fmt.Errorf("%w: at least one bind=TABLE:SHAPE parameter is required", errInvalidRequest)
		}
		return nil, nil
	}

	bindings, err := core.ParseBindings(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return bindings, nil
}

// xlsxName derives the download name from the uploaded file name.
func xlsxName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "tables"
	}
	return base + ".xlsx"
}

// writeJSON encodes v before writing the status, so an encode failure is
// reported as a 500 instead of a truncated success.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
