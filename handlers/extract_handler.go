// handlers/extract_handler.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/models"
	"github.com/gewnthar/adcvd/sheets"
)

const maxUploadBytes = 10 << 20

// NoResultsWarning is returned instead of a file when a batch yields no rows.
const NoResultsWarning = "No results extracted."

var contentTypes = map[sheets.Format]string{
	sheets.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	sheets.FormatCSV:  "text/csv; charset=utf-8",
}

// BatchRunner runs a batch of message lookups.
type BatchRunner interface {
	RunBatch(ctx context.Context, ids []models.MessageID) (*models.ResultTable, error)
}

// ExtractHandler serves the upload form and turns uploaded ID lists into
// downloadable result tables. Only one batch runs at a time because all
// batches share the portal session.
type ExtractHandler struct {
	runner   BatchRunner
	filename string
	logger   *zap.Logger
	busy     sync.Mutex
}

func NewExtractHandler(runner BatchRunner, filename string, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{runner: runner, filename: filename, logger: logger}
}

// Register mounts the extractor endpoints on the router.
func (h *ExtractHandler) Register(r chi.Router) {
	r.Get("/", h.HandleForm)
	r.Post("/extract", h.HandleExtract)
}

var uploadForm = template.Must(template.New("upload").Parse(`<!doctype html>
<html>
<head><title>CBP ACE ADCVD Message Extractor</title></head>
<body>
<h1>CBP ACE ADCVD Message Extractor</h1>
<form method="post" action="/extract" enctype="multipart/form-data">
  <p>Upload an Excel or CSV file with a <code>{{.Column}}</code> column.</p>
  <input type="file" name="file" accept=".xlsx,.csv" required>
  <select name="format">
    <option value="xlsx">Excel</option>
    <option value="csv">CSV</option>
  </select>
  <button type="submit">Extract</button>
</form>
</body>
</html>`))

// HandleForm handles GET / with the upload form.
func (h *ExtractHandler) HandleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := uploadForm.Execute(w, map[string]string{"Column": sheets.MessageIDColumn}); err != nil {
		h.logger.Error("handlers: failed to render upload form", zap.Error(err))
	}
}

// HandleExtract handles POST /extract. It expects a multipart "file" field and
// an optional "format" field (xlsx or csv) for the download.
func (h *ExtractHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Missing upload field 'file': "+err.Error())
		return
	}
	defer file.Close()

	inFormat, err := sheets.FormatFromName(fileHeader.Filename)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	outFormat := sheets.FormatXLSX
	if f := r.FormValue("format"); f != "" {
		outFormat = sheets.Format(f)
		if _, ok := contentTypes[outFormat]; !ok {
			respondWithError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid format '%s'. Use 'xlsx' or 'csv'.", f))
			return
		}
	}

	ids, err := sheets.ReadMessageIDs(file, inFormat)
	if errors.Is(err, sheets.ErrMissingColumn) {
		respondWithError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Could not read upload: "+err.Error())
		return
	}

	if !h.busy.TryLock() {
		respondWithError(w, h.logger, http.StatusConflict, "A batch is already running; try again when it finishes.")
		return
	}
	defer h.busy.Unlock()

	h.logger.Info("handlers: batch requested", zap.String("upload", fileHeader.Filename), zap.Int("messages", len(ids)))
	// A started batch runs to completion even if the client goes away.
	table, err := h.runner.RunBatch(context.WithoutCancel(r.Context()), ids)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadGateway, "Batch failed: "+err.Error())
		return
	}

	if len(table.Rows()) == 0 {
		respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"warning": NoResultsWarning})
		return
	}

	var buf bytes.Buffer
	if err := sheets.Write(&buf, table, outFormat); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to build download: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypes[outFormat])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(h.filename, outFormat)))
	w.Header().Set("X-Adcvd-Records", strconv.Itoa(table.RecordCount()))
	w.Header().Set("X-Adcvd-Errors", strconv.Itoa(table.ErrorCount()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("handlers: failed to send download", zap.Error(err))
	}
}

// downloadName swaps the configured file name's extension for the output format's.
func downloadName(name string, format sheets.Format) string {
	if f, err := sheets.FormatFromName(name); err == nil && f == format {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + string(format)
}
