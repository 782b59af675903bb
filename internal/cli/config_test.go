package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigParsesFields(t *testing.T) {
	dir := t.TempDir()
	data := "package: editor_test\n" +
		"runtime_import: example.com/proj/replay\n" +
		"host: newHost\n" +
		"command_prefix: myext\n" +
		"stagger_ms: 30\n" +
		"output_suffix: _suite_test.go\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(data), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "editor_test", cfg.Package)
	assert.Equal(t, "example.com/proj/replay", cfg.RuntimeImport)
	assert.Equal(t, "newHost", cfg.Host)
	assert.Equal(t, "myext", cfg.CommandPrefix)
	assert.Equal(t, 30, cfg.StaggerMS)
	assert.Equal(t, "_suite_test.go", cfg.OutputSuffix)

	opts := cfg.Options()
	assert.Equal(t, "editor_test", opts.Package)
	assert.Equal(t, "newHost", opts.HostExpr)
	assert.Equal(t, 30, opts.StaggerMS)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile),
		[]byte("packge: typo\n"), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ConfigFile)
}

func TestOutputPath(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "specs/motions_gen_test.go", cfg.outputPath("specs/motions.etch"))

	cfg.OutputSuffix = "_suite_test.go"
	assert.Equal(t, "specs/motions_suite_test.go", cfg.outputPath("specs/motions.etch"))
}
