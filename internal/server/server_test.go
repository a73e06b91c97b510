package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmkeep/shell/internal/records"
	"github.com/farmkeep/shell/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fixture struct {
	screen  *Screen
	router  *router.Router
	animals *records.AnimalStore
	sales   *records.SaleStore
	handler http.Handler
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		screen:  NewScreen(),
		animals: records.NewAnimalStore(),
		sales:   records.NewSaleStore(),
	}
	f.router = router.New(f.screen, logger)
	f.handler = New(Options{
		Addr:        "127.0.0.1:0",
		APIToken:    token,
		Debug:       true,
		Screen:      f.screen,
		Orientation: f.router,
		Animals:     f.animals,
		Sales:       f.sales,
		Logger:      logger,
	}).Handler()
	return f
}

func (f *fixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestBeforeRouting(t *testing.T) {
	f := newFixture(t, "")

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ping", nil).Code)

	w := f.do(http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "none", gjson.Get(w.Body.String(), "data.screen").String())
	assert.Equal(t, "portrait", gjson.Get(w.Body.String(), "data.orientation.mask").String())

	for _, path := range []string{"/", "/api/v1/animals", "/api/v1/statistics", "/elsewhere"} {
		assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, path, nil).Code, path)
	}
}

func TestWebScreen(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.router.Route("https://dest.example/landing?x=1"))

	w := f.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://dest.example/landing?x=1", w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/animals", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/elsewhere", nil).Code)

	body := f.do(http.MethodGet, "/state", nil).Body.String()
	assert.Equal(t, "web", gjson.Get(body, "data.screen").String())
	assert.Equal(t, "all", gjson.Get(body, "data.orientation.mask").String())
	assert.True(t, gjson.Get(body, "data.orientation.auto_rotate").Bool())
}

func TestScreenRejectsRelativeURL(t *testing.T) {
	s := NewScreen()
	assert.Error(t, s.Load("/relative/path"))
	kind, _ := s.Current()
	assert.Equal(t, ScreenNone, kind)
}

func TestNativeAnimalsCRUD(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.router.Route(""))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/", nil).Code)

	w := f.do(http.MethodPost, "/api/v1/animals", gin.H{
		"type": "Cows", "quantity": 5, "breed": "Holstein", "sex": "Female", "status": "In breeding",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := gjson.Get(w.Body.String(), "data.id").String()
	require.NotEmpty(t, id)

	w = f.do(http.MethodPut, "/api/v1/animals/"+id, gin.H{
		"type": "Cows", "quantity": 7, "breed": "Holstein", "sex": "Female", "status": "On feed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/v1/animals", nil)
	assert.Equal(t, int64(7), gjson.Get(w.Body.String(), "data.total_heads").Int())
	assert.Equal(t, "On feed", gjson.Get(w.Body.String(), "data.animals.0.status").String())

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/animals/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/v1/animals/"+id, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/v1/animals/not-a-uuid", nil).Code)
}

func TestNativeRejectsInvalidRecords(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.router.Route(""))

	w := f.do(http.MethodPost, "/api/v1/animals", gin.H{
		"type": "Cows", "quantity": 0, "breed": "Holstein", "sex": "Female", "status": "On feed",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, gjson.Get(w.Body.String(), "error").String(), "quantity")

	w = f.do(http.MethodPost, "/api/v1/sales", gin.H{"category": "Milk", "animal_type": "Cows", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/v1/sales/"+uuid.NewString(), gin.H{
		"category": "Milk", "animal_type": "Cows", "quantity": 1, "amount": 3,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNativeSalesAndStatistics(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.router.Route(""))

	w := f.do(http.MethodPost, "/api/v1/sales", gin.H{
		"category": "Eggs", "animal_type": "Chickens", "quantity": 24, "amount": 9.5, "customer": "Market",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := gjson.Get(w.Body.String(), "data.id").String()

	past := time.Now().AddDate(0, 0, -3)
	w = f.do(http.MethodPost, "/api/v1/sales", gin.H{
		"category": "Milk", "animal_type": "Cows", "quantity": 10, "amount": 20, "date": past,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/v1/sales", nil)
	assert.InDelta(t, 29.5, gjson.Get(w.Body.String(), "data.total").Float(), 1e-9)

	w = f.do(http.MethodGet, "/api/v1/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.InDelta(t, 29.5, gjson.Get(body, "data.month_income").Float(), 1e-9)
	assert.Equal(t, int64(7), gjson.Get(body, "data.weekly.#").Int())
	assert.Equal(t, "Cows", gjson.Get(body, "data.top.0.animal_type").String())

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/sales/"+id, nil).Code)
}

func TestNativeAPIToken(t *testing.T) {
	f := newFixture(t, "s3cret")
	require.NoError(t, f.router.Route(""))

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/animals", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/animals", nil, "X-Shell-Token", "nope").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/animals", nil, "X-Shell-Token", "s3cret").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ping", nil).Code)
}
