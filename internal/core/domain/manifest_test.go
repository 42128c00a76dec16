package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ipkg/internal/core/domain"
)

func TestValidPackageName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{name: "uart", valid: true},
		{name: "axi-lite_v2.1", valid: true},
		{name: "", valid: false},
		{name: ".", valid: false},
		{name: "..", valid: false},
		{name: "vendor/uart", valid: false},
		{name: "../escape", valid: false},
		{name: `vendor\uart`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, domain.ValidPackageName(tt.name))
		})
	}
}
