package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/cmd/ipkg/commands"
	"go.trai.ch/ipkg/internal/app"
	"go.trai.ch/ipkg/internal/build"
)

type mockApp struct {
	global   app.GlobalOptions
	calls    []string
	packages app.PackagesOptions
	args     []string
	clone    app.CloneOptions
	clean    app.CleanOptions
	err      error
}

func (m *mockApp) record(name string, args ...string) error {
	m.calls = append(m.calls, name)
	m.args = args
	return m.err
}

func (m *mockApp) Configure(opts app.GlobalOptions) {
	m.global = opts
}

func (m *mockApp) Packages(_ context.Context, w io.Writer, opts app.PackagesOptions) error {
	m.packages = opts
	_, _ = io.WriteString(w, "D\nB C\nA\n")
	return m.record("packages")
}

func (m *mockApp) Parents(_ context.Context, _ io.Writer, name string) error {
	return m.record("parents", name)
}

func (m *mockApp) Path(_ context.Context, _ io.Writer, pkgs []string) error {
	return m.record("path", pkgs...)
}

func (m *mockApp) Checkout(_ context.Context) error {
	return m.record("checkout")
}

func (m *mockApp) Clone(_ context.Context, name string, opts app.CloneOptions) error {
	m.clone = opts
	return m.record("clone", name)
}

func (m *mockApp) Sources(_ context.Context, _ io.Writer) error {
	return m.record("sources")
}

func (m *mockApp) Update(_ context.Context) error {
	return m.record("update")
}

func (m *mockApp) Config(_ context.Context, _ io.Writer) error {
	return m.record("config")
}

func (m *mockApp) Clean(_ context.Context, opts app.CleanOptions) error {
	m.clean = opts
	return m.record("clean")
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Dispatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		call string
		want []string
	}{
		{name: "parents", args: []string{"parents", "uart"}, call: "parents", want: []string{"uart"}},
		{name: "path", args: []string{"path", "uart", "axi"}, call: "path", want: []string{"uart", "axi"}},
		{name: "checkout", args: []string{"checkout"}, call: "checkout"},
		{name: "sources", args: []string{"sources"}, call: "sources"},
		{name: "update", args: []string{"update"}, call: "update"},
		{name: "config", args: []string{"config"}, call: "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockApp{}
			_, err := execute(t, m, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.call}, m.calls)
			if tt.want != nil {
				assert.Equal(t, tt.want, m.args)
			}
		})
	}
}

func TestCommands_Packages(t *testing.T) {
	t.Run("prints ranks", func(t *testing.T) {
		m := &mockApp{}
		out, err := execute(t, m, "packages")
		require.NoError(t, err)
		assert.Equal(t, "D\nB C\nA\n", out)
		assert.Equal(t, app.PackagesOptions{}, m.packages)
	})

	t.Run("wires flags correctly", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "packages", "-g", "--flat")
		require.NoError(t, err)
		assert.Equal(t, app.PackagesOptions{Graph: true, Flat: true}, m.packages)
	})
}

func TestCommands_GlobalFlags(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "--verbose", "--offline", "--json-log", "checkout")
	require.NoError(t, err)
	assert.Equal(t, app.GlobalOptions{Verbose: true, JSONLog: true, Offline: true}, m.global)
}

func TestCommands_Clone(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "clone", "uart")
	require.NoError(t, err)
	assert.Equal(t, app.DefaultCloneDir, m.clone.Dir)

	m = &mockApp{}
	_, err = execute(t, m, "clone", "uart", "-p", "../work")
	require.NoError(t, err)
	assert.Equal(t, "../work", m.clone.Dir)
	assert.Equal(t, []string{"uart"}, m.args)
}

func TestCommands_Clean(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "clean", "--all")
	require.NoError(t, err)
	assert.True(t, m.clean.All)
}

func TestCommands_ArgumentValidation(t *testing.T) {
	tests := [][]string{
		{"parents"},
		{"parents", "a", "b"},
		{"path"},
		{"clone"},
		{"packages", "extra"},
	}

	for _, args := range tests {
		m := &mockApp{}
		_, err := execute(t, m, args...)
		require.Error(t, err, "args %v", args)
		assert.Empty(t, m.calls)
	}
}

func TestCommands_ReturnsAppError(t *testing.T) {
	m := &mockApp{err: errors.New("simulated error")}
	_, err := execute(t, m, "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ipkg version "+build.Version)
}
