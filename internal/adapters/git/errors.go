package git

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/retry"
	"go.trai.ch/zerr"
)

var transientMessages = []string{
	"connection reset",
	"timed out",
	"early eof",
	"remote end hung up",
	"temporary failure",
}

// classify maps a fetch failure to ErrUnreachableSource, marking transient ones for retry.
func classify(url string, err error) error {
	wrapped := zerr.With(zerr.Wrap(domain.ErrUnreachableSource, err.Error()), "url", url)

	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, transport.ErrEmptyRemoteRepository),
		errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return wrapped
	case isTransient(err):
		return retry.Transient(wrapped)
	default:
		return wrapped
	}
}

func isTransient(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
