package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/analyzer"
	"github.com/gewnthar/adcvd/config"
	"github.com/gewnthar/adcvd/metrics"
	"github.com/gewnthar/adcvd/models"
	"github.com/gewnthar/adcvd/scraper/scrapertest"
	"github.com/gewnthar/adcvd/services"
)

type noEntities struct{}

func (noEntities) Entities(string) ([]analyzer.Entity, error) { return nil, nil }

type failingRunner struct{}

func (failingRunner) RunBatch(context.Context, []models.MessageID) (*models.ResultTable, error) {
	return nil, errors.New("chromium missing")
}

func newTestRouter(t *testing.T, runner BatchRunner) (http.Handler, *ExtractHandler) {
	t.Helper()
	reg := prometheus.NewRegistry()
	if runner == nil {
		page := scrapertest.NewPage(map[models.MessageID]scrapertest.Message{
			"4123401": {
				Fields: map[string]string{
					models.LabelCategory:      "AD Cash Deposit",
					models.LabelEffectiveDate: "05/01/2024",
					models.LabelMessageTitle:  "Cash deposit instructions for honey from Argentina",
				},
				Body: scrapertest.Body("Exporter: Acme\nCase number: A-357-812-000\nCash deposit rate: 9.67%"),
			},
			"4123402": {SearchErr: errors.New("navigation failed")},
		})
		runner = services.NewBatchService(
			page.Opener(nil),
			noEntities{},
			config.PortalConfig{WaitTimeout: time.Second},
			metrics.New(reg),
			zap.NewNop(),
			services.WithSleep(func(time.Duration) {}),
		)
	}
	h := NewExtractHandler(runner, "cbp_extracted_data.xlsx", zap.NewNop())
	return NewRouter(h, reg, zap.NewNop()), h
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleExtract_XLSXDownload(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, uploadRequest(t, "ids.csv", "Message_ID\n4123401\n4123402\n", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypes["xlsx"], rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cbp_extracted_data.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Adcvd-Records"))
	assert.Equal(t, "1", rec.Header().Get("X-Adcvd-Errors"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"4123401", "Acme", "Not mentioned", "A-357-812-000", "9.67%", "honey", "Argentina", "AD Cash Deposit", "05/01/2024"}, rows[1])
	assert.Equal(t, "4123402", rows[2][0])
	assert.Equal(t, "searching: navigation failed", rows[2][len(models.Columns)])
}

func TestHandleExtract_CSVDownload(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, uploadRequest(t, "ids.csv", "Message_ID\n4123401\n", map[string]string{"format": "csv"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="cbp_extracted_data.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Message_ID,Exporter,Producer"))
}

func TestHandleExtract_NoResults(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := httptest.NewRecorder()

	// unknown ID: the search finds nothing, fields time out, body parses to zero records
	router.ServeHTTP(rec, uploadRequest(t, "ids.csv", "Message_ID\n999\n", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, NoResultsWarning, got["warning"])
}

func TestHandleExtract_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
	}{
		{"missing column", uploadRequest(t, "ids.csv", "ID\n1\n", nil), http.StatusUnprocessableEntity},
		{"bad extension", uploadRequest(t, "ids.txt", "Message_ID\n1\n", nil), http.StatusBadRequest},
		{"bad format", uploadRequest(t, "ids.csv", "Message_ID\n1\n", map[string]string{"format": "pdf"}), http.StatusBadRequest},
		{"no file", httptest.NewRequest(http.MethodPost, "/extract", nil), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandleExtract_BatchFailure(t *testing.T) {
	router, _ := newTestRouter(t, failingRunner{})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, uploadRequest(t, "ids.csv", "Message_ID\n1\n", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "chromium missing")
}

func TestHandleExtract_Busy(t *testing.T) {
	router, h := newTestRouter(t, nil)
	h.busy.Lock()
	defer h.busy.Unlock()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "ids.csv", "Message_ID\n4123401\n", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_FormHealthMetrics(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="file"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	// run one batch so the counters have samples
	router.ServeHTTP(httptest.NewRecorder(), uploadRequest(t, "ids.csv", "Message_ID\n4123401\n", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "adcvd_messages_processed_total")
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "out.xlsx", downloadName("out.xlsx", "xlsx"))
	assert.Equal(t, "out.csv", downloadName("out.xlsx", "csv"))
	assert.Equal(t, "out.csv", downloadName("out", "csv"))
}
