package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStub(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })
}

func TestForward(t *testing.T) {
	withStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `[{"lat":"52.5200","lon":"13.4050","display_name":"Berlin, Germany"}]`)
	})

	// unique address per run so a live Redis cannot serve a stale cache entry
	addr := fmt.Sprintf("Alexanderplatz %d, Berlin", time.Now().UnixNano())
	res, err := Forward(context.Background(), addr)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.InDelta(t, 52.52, res.Latitude, 1e-9)
	assert.InDelta(t, 13.405, res.Longitude, 1e-9)
	assert.Equal(t, "Berlin, Germany", res.DisplayName)
}

func TestForwardUnknownAddress(t *testing.T) {
	withStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	res, err := Forward(context.Background(), fmt.Sprintf("nowhere %d", time.Now().UnixNano()))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestForwardEmptyAddress(t *testing.T) {
	res, err := Forward(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestForwardBadCoordinates(t *testing.T) {
	withStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"not-a-number","lon":"13.4050"}]`)
	})

	_, err := Forward(context.Background(), fmt.Sprintf("bad %d", time.Now().UnixNano()))
	assert.Error(t, err)
}

func TestForwardServerError(t *testing.T) {
	withStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := Forward(context.Background(), fmt.Sprintf("down %d", time.Now().UnixNano()))
	assert.Error(t, err)
}

func TestReverseHandler(t *testing.T) {
	withStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"lat":"52.5200","lon":"13.4050","display_name":"Berlin, Germany"}`)
	})

	lat := 52.0 + float64(time.Now().UnixNano()%100000)/1e7
	target := fmt.Sprintf("/api/geocode/reverse?lat=%f&lng=13.405", lat)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ReverseHandler(rec, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Berlin, Germany", body["displayName"])
}

func TestReverseHandlerBadParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/geocode/reverse?lat=abc&lng=13.4", nil)
	rec := httptest.NewRecorder()
	ReverseHandler(rec, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/geocode/reverse?lat=52.5", nil)
	rec = httptest.NewRecorder()
	ReverseHandler(rec, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReverse(t *testing.T) {
	withStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		fmt.Fprint(w, `{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France"}`)
	})

	// jitter the coordinate so the Redis cache key is fresh
	lat := 48.0 + float64(time.Now().UnixNano()%100000)/1e7
	name, err := Reverse(context.Background(), lat, 2.3522)
	require.NoError(t, err)
	assert.Equal(t, "Paris, France", name)
}
