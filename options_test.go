package rseq_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/THE-NUKELEDGE/rseq2mid"
)

func TestReadConfig(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("config dir override via XDG_CONFIG_HOME only works on unixes")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "rseq2mid"), 0755); err != nil {
		t.Fatalf("creating config dir: %v", err)
	}
	err := os.WriteFile(filepath.Join(dir, "rseq2mid", "config.yml"), []byte("ignorejumps: true\n"), 0644)
	if err != nil {
		t.Fatalf("writing config: %v", err)
	}
	opts, err := rseq.ReadConfig()
	if assert.NoError(t, err) {
		assert.True(t, opts.IgnoreJumps)
		assert.False(t, opts.DebugControllers)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("config dir override via XDG_CONFIG_HOME only works on unixes")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	opts, err := rseq.ReadConfig()
	assert.NoError(t, err)
	assert.Equal(t, rseq.Options{}, opts)
}
