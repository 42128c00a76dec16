package registry

import (
	"net/http"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
)

// NewIndexWithClient exposes newIndexWithClient for tests.
func NewIndexWithClient(settings *domain.Settings, logger ports.Logger, client *http.Client) *Index {
	return newIndexWithClient(settings, logger, client)
}
