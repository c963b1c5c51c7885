package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dataspark.io/insights-service/internal/core"
	"dataspark.io/insights-service/internal/dataset"
	"dataspark.io/insights-service/internal/store"
)

const employeesCSV = "name,age,salary,department\n" +
	"John,30,50000,Engineering\n" +
	"Jane,25,60000,Marketing\n" +
	"Bob,35,70000,Sales\n"

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, _ dataset.Summary) (string, error) {
	g.calls++
	return g.text, g.err
}

func newTestServer(t *testing.T, gen *fakeGenerator) (http.Handler, *store.SQLiteStore) {
	t.Helper()
	dbStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbStore.Close() })

	analyzer := core.NewAnalyzer(dbStore, gen, core.NewMemoCache(), time.Second)
	return NewRouter(NewAPIHandler(analyzer, dbStore, gen.Name())), dbStore
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/insights/file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestUploadUnsupportedExtension(t *testing.T) {
	router, _ := newTestServer(t, &fakeGenerator{text: "unused"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "notes.txt", []byte("some text")))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	decodeJSON(t, w, &resp)
	require.Contains(t, resp["detail"], "txt")
}

func TestUploadMissingFileField(t *testing.T) {
	router, _ := newTestServer(t, &fakeGenerator{text: "unused"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/insights/file", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAndRetrieveInsights(t *testing.T) {
	gen := &fakeGenerator{text: "Salaries rise with age."}
	router, _ := newTestServer(t, gen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "employees.csv", []byte(employeesCSV)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp InsightResponse
	decodeJSON(t, w, &resp)
	require.Equal(t, "Salaries rise with age.", resp.Insights)
	require.Len(t, resp.CacheKey, 32)
	require.Equal(t, 1, gen.calls)

	// Re-uploading the same data hits the cache; no second generation.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "employees_copy.csv", []byte(employeesCSV)))
	require.Equal(t, http.StatusOK, w.Code)

	var second InsightResponse
	decodeJSON(t, w, &second)
	require.Equal(t, resp.CacheKey, second.CacheKey)
	require.Equal(t, resp.Insights, second.Insights)
	require.Equal(t, 1, gen.calls)

	// The key also resolves through the lookup endpoint.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/insights/"+resp.CacheKey, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var fetched InsightResponse
	decodeJSON(t, w, &fetched)
	require.Equal(t, resp.Insights, fetched.Insights)
}

func TestUploadGeneratorFailureStillSucceeds(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exhausted")}
	router, dbStore := newTestServer(t, gen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "employees.csv", []byte(employeesCSV)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp InsightResponse
	decodeJSON(t, w, &resp)
	require.Equal(t, core.GenerationErrorPrefix+"quota exhausted", resp.Insights)

	// The error text is cached like any other result, tagged as an error.
	ins, err := dbStore.LookupInsight(resp.CacheKey)
	require.NoError(t, err)
	require.NotNil(t, ins)
	require.Equal(t, store.StatusError, ins.Status)
}

func TestUploadEmptyDataset(t *testing.T) {
	router, _ := newTestServer(t, &fakeGenerator{text: "unused"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "empty.csv", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInsightsMiss(t *testing.T) {
	router, _ := newTestServer(t, &fakeGenerator{text: "unused"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/insights/zzz999", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]string
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp["detail"])
}

func TestListAndSearchInsights(t *testing.T) {
	gen := &fakeGenerator{text: "Revenue is trending upward."}
	router, _ := newTestServer(t, gen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "employees.csv", []byte(employeesCSV)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/insights", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var all []store.Insight
	decodeJSON(t, w, &all)
	require.Len(t, all, 1)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/insights/search?q=revenue", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var matches []store.Insight
	decodeJSON(t, w, &matches)
	require.Len(t, matches, 1)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/insights/search", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadsAreRecorded(t *testing.T) {
	gen := &fakeGenerator{text: "whatever"}
	router, _ := newTestServer(t, gen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartUpload(t, "employees.csv", []byte(employeesCSV)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var uploads []store.Upload
	decodeJSON(t, w, &uploads)
	require.Len(t, uploads, 1)
	require.Equal(t, "employees.csv", uploads[0].Filename)
	require.NotEmpty(t, uploads[0].ID)
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, &fakeGenerator{text: "unused"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	decodeJSON(t, w, &resp)
	require.Equal(t, "ok", resp["status"])
	require.Equal(t, "fake", resp["provider"])
}
