package registry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/internal/adapters/registry"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// MockRoundTripper is a helper to mock http.Client behavior.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

func newMockClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{Transport: &MockRoundTripper{RoundTripFunc: handler}}
}

func jsonResponse(t *testing.T, status int, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: make(http.Header)}
}

func uartDocument() registry.Document {
	return registry.Document{
		Name: "uart",
		Versions: []domain.Release{
			{Version: "1.0.0", URL: "https://example.com/uart.git", Revision: "aaa"},
			{Version: "1.2.0", URL: "https://example.com/uart.git", Revision: "bbb"},
		},
	}
}

func newLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func TestIndex_HTTP(t *testing.T) {
	cache := t.TempDir()
	settings := &domain.Settings{CacheDir: cache, RegistryURL: "https://registry.example.com/index/", RetryDelay: time.Millisecond}

	var requested string
	client := newMockClient(func(req *http.Request) (*http.Response, error) {
		requested = req.URL.String()
		return jsonResponse(t, http.StatusOK, uartDocument()), nil
	})

	idx := registry.NewIndexWithClient(settings, newLogger(t), client)
	releases, err := idx.Releases(context.Background(), "uart")
	require.NoError(t, err)

	assert.Equal(t, "https://registry.example.com/index/uart.json", requested)
	assert.Equal(t, uartDocument().Versions, releases)
	assert.FileExists(t, filepath.Join(domain.RegistryCachePath(cache), "uart.json"))
}

func TestIndex_NotFound(t *testing.T) {
	settings := &domain.Settings{CacheDir: t.TempDir(), RegistryURL: "https://registry.example.com"}
	client := newMockClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody}, nil
	})

	_, err := registry.NewIndexWithClient(settings, newLogger(t), client).Releases(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnreachableSource)
}

func TestIndex_RetriesThenFallsBackToCache(t *testing.T) {
	cache := t.TempDir()
	settings := &domain.Settings{CacheDir: cache, RegistryURL: "https://registry.example.com", Retries: 2, RetryDelay: time.Millisecond}

	ok := registry.NewIndexWithClient(settings, newLogger(t), newMockClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, uartDocument()), nil
	}))
	_, err := ok.Releases(context.Background(), "uart")
	require.NoError(t, err)

	calls := 0
	down := registry.NewIndexWithClient(settings, newLogger(t), newMockClient(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	}))
	releases, err := down.Releases(context.Background(), "uart")
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "transport failures are retried")
	assert.Len(t, releases, 2)
}

func TestIndex_ServerErrorWithoutCache(t *testing.T) {
	settings := &domain.Settings{CacheDir: t.TempDir(), RegistryURL: "https://registry.example.com", RetryDelay: time.Millisecond}
	client := newMockClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: http.NoBody}, nil
	})

	_, err := registry.NewIndexWithClient(settings, newLogger(t), client).Releases(context.Background(), "uart")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryIndexFailed)
}

func TestIndex_Directory(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(uartDocument())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uart.json"), data, 0o600))

	settings := &domain.Settings{CacheDir: t.TempDir(), RegistryURL: dir}
	idx := registry.NewIndex(settings, newLogger(t))

	releases, err := idx.Releases(context.Background(), "uart")
	require.NoError(t, err)
	assert.Len(t, releases, 2)

	_, err = idx.Releases(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnreachableSource)

	_, err = idx.Releases(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrUnreachableSource)
}

func TestIndex_Offline(t *testing.T) {
	cache := t.TempDir()
	dir := t.TempDir()
	data, err := json.Marshal(uartDocument())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uart.json"), data, 0o600))

	offline := &domain.Settings{CacheDir: cache, RegistryURL: dir, Offline: true}
	_, err = registry.NewIndex(offline, newLogger(t)).Releases(context.Background(), "uart")
	assert.ErrorIs(t, err, domain.ErrOffline)

	online := &domain.Settings{CacheDir: cache, RegistryURL: dir}
	_, err = registry.NewIndex(online, newLogger(t)).Releases(context.Background(), "uart")
	require.NoError(t, err)

	releases, err := registry.NewIndex(offline, newLogger(t)).Releases(context.Background(), "uart")
	require.NoError(t, err)
	assert.Len(t, releases, 2)
}
