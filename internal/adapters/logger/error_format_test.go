package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ipkg/internal/adapters/logger"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "single standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr chain ending in a standard error",
			err:          zerr.Wrap(zerr.Wrap(errors.New("exit status 128"), "git fetch failed"), "source is unreachable"),
			wantMessages: []string{"source is unreachable", "git fetch failed", "exit status 128"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name: "metadata stays with its level",
			err: func() error {
				inner := zerr.With(zerr.New("reference does not resolve"), "ref", "v9.9")
				return zerr.With(zerr.Wrap(inner, "resolving uart"), "package", "uart")
			}(),
			wantMessages: []string{"resolving uart", "reference does not resolve"},
			wantMetadata: []map[string]any{
				{"package": "uart"},
				{"ref": "v9.9"},
			},
		},
		{
			name: "metadata on a typed error is carried to it",
			err: zerr.With(&domain.CycleError{Names: []string{"x", "y"}}, "root", "soc"),
			wantMessages: []string{"dependency cycle detected: x -> y -> x"},
			wantMetadata: []map[string]any{{"root": "soc"}},
		},
		{
			name:         "nil error",
			err:          nil,
			wantMessages: nil,
			wantMetadata: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntriesExported(tt.err)

			if tt.err == nil {
				assert.Empty(t, entries)
				return
			}

			assert.Len(t, entries, len(tt.wantMessages))
			for i, wantMsg := range tt.wantMessages {
				assert.Equal(t, wantMsg, entries[i].Message, "message mismatch at index %d", i)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata, "metadata mismatch at index %d", i)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "single error"}},
			want:    "Error: single error",
		},
		{
			name:    "two entries with caused by",
			entries: []logger.ErrorEntry{{Message: "outer error"}, {Message: "inner error"}},
			want:    "Error: outer error\n\n  Caused by:\n    → inner error",
		},
		{
			name: "metadata sorted alphabetically",
			entries: []logger.ErrorEntry{{
				Message:  "error",
				Metadata: map[string]any{"zebra": "z", "alpha": "a", "mike": "m"},
			}},
			want: "Error: error\n       alpha: a\n       mike: m\n       zebra: z",
		},
		{
			name: "metadata on cause",
			entries: []logger.ErrorEntry{
				{Message: "main"},
				{Message: "cause", Metadata: map[string]any{"url": "https://example.com/x"}},
			},
			want: "Error: main\n\n  Caused by:\n    → cause\n      url: https://example.com/x",
		},
		{
			name: "multiline conflict listing",
			entries: []logger.ErrorEntry{
				{Message: "conflicting sources requested for package \"x\":\n  - a requests v1\n  - b requests v2"},
			},
			want: "Error: conflicting sources requested for package \"x\":\n         - a requests v1\n         - b requests v2",
		},
		{
			name:    "empty entries",
			entries: []logger.ErrorEntry{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntriesExported(tt.entries))
		})
	}
}
