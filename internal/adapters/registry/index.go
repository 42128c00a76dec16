// Package registry implements ports.RegistryIndex over an http or directory index
// with a local document cache.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/retry"
	"go.trai.ch/zerr"
)

const httpClientTimeout = 30 * time.Second

var _ ports.RegistryIndex = (*Index)(nil)

// Document is the index entry of one package, served as <base>/<name>.json.
type Document struct {
	Name     string           `json:"name"`
	Versions []domain.Release `json:"versions"`
}

// Index implements ports.RegistryIndex.
type Index struct {
	baseURL    string
	cacheDir   string
	settings   *domain.Settings
	policy     retry.Policy
	httpClient *http.Client
	logger     ports.Logger
}

// NewIndex creates an Index reading from settings.RegistryURL.
func NewIndex(settings *domain.Settings, logger ports.Logger) *Index {
	return newIndexWithClient(settings, logger, &http.Client{Timeout: httpClientTimeout})
}

func newIndexWithClient(settings *domain.Settings, logger ports.Logger, client *http.Client) *Index {
	return &Index{
		baseURL:    strings.TrimRight(settings.RegistryURL, "/"),
		cacheDir:   domain.RegistryCachePath(settings.CacheDir),
		settings:   settings,
		policy:     retry.Policy{Retries: settings.Retries, Delay: settings.RetryDelay},
		httpClient: client,
		logger:     logger,
	}
}

// Releases returns the releases of name. A cached document is used when
// offline or when the index cannot be reached.
func (i *Index) Releases(ctx context.Context, name string) ([]domain.Release, error) {
	if !domain.ValidPackageName(name) {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "invalid registry package name"), "package", name)
	}

	cachePath := filepath.Join(i.cacheDir, name+".json")

	if i.settings.Offline {
		doc, err := loadDocument(cachePath)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrOffline, "registry package was never fetched"), "package", name)
		}
		return doc.Versions, nil
	}

	if i.baseURL == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "no registry configured"), "package", name)
	}

	var data []byte
	err := i.policy.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		data, fetchErr = i.fetch(ctx, name)
		return fetchErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnreachableSource) {
			return nil, err
		}
		if doc, cacheErr := loadDocument(cachePath); cacheErr == nil {
			i.logger.Warn("registry unavailable, using cached index for " + name)
			return doc.Versions, nil
		}
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrRegistryIndexFailed, err.Error()), "package", name)
	}

	if err := atomicWriteFile(cachePath, data); err != nil {
		i.logger.Warn("failed to cache registry index for " + name)
	}
	return doc.Versions, nil
}

func (i *Index) fetch(ctx context.Context, name string) ([]byte, error) {
	if !isHTTP(i.baseURL) {
		path := filepath.Join(strings.TrimPrefix(i.baseURL, "file://"), name+".json")
		data, err := os.ReadFile(path) //nolint:gosec // path is inside the configured registry
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "package not in registry"), "package", name)
			}
			return nil, zerr.With(zerr.Wrap(domain.ErrRegistryIndexFailed, err.Error()), "path", path)
		}
		return data, nil
	}

	url := i.baseURL + "/" + name + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrRegistryIndexFailed, err.Error())
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(zerr.With(zerr.Wrap(domain.ErrRegistryIndexFailed, err.Error()), "url", url))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnreachableSource, "package not in registry"), "package", name)
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		statusErr := zerr.With(zerr.Wrap(domain.ErrRegistryIndexFailed, "registry unavailable"), "status_code", resp.StatusCode)
		return nil, retry.Transient(zerr.With(statusErr, "url", url))
	case resp.StatusCode != http.StatusOK:
		statusErr := zerr.With(zerr.Wrap(domain.ErrRegistryIndexFailed, "unexpected registry response"), "status_code", resp.StatusCode)
		return nil, zerr.With(statusErr, "url", url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(zerr.Wrap(domain.ErrRegistryIndexFailed, err.Error()))
	}
	return body, nil
}

func loadDocument(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // path is inside the cache directory
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only

	var doc Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func isHTTP(base string) bool {
	return strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://")
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".registry-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
