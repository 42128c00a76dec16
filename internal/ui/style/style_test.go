package style_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ipkg/internal/ui/style"
)

func TestBind_PlainForBuffers(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.Equal(t, "uart", style.Bind(style.Name, buf).Render("uart"))
}
