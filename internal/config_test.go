package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	conf, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 60, conf.MatchWindow)
	assert.Equal(t, DefaultMatchWindow, conf.Window())
	assert.Equal(t, WriterNative, conf.Writer)
	assert.Equal(t, DefaultTempSuffix, conf.TempSuffix)
	assert.Empty(t, conf.LogFile)
	assert.Empty(t, conf.Manifest)
	assert.NoError(t, conf.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `match_window = 15
writer = "exiftool"
temp_suffix = ".partial"
exiftool_path = "/opt/bin/exiftool"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geotagger.toml"), []byte(content), 0644))

	conf, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, conf.Window())
	assert.Equal(t, WriterExifTool, conf.Writer)
	assert.Equal(t, ".partial", conf.TempSuffix)
	assert.Equal(t, "/opt/bin/exiftool", conf.ExifToolPath)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("GEOTAGGER_MATCH_WINDOW", "30")
	t.Setenv("GEOTAGGER_MANIFEST", "/tmp/run.jsonl")

	conf, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 30, conf.MatchWindow)
	assert.Equal(t, "/tmp/run.jsonl", conf.Manifest)
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geotagger.toml"), []byte("match_window = [unclosed"), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{MatchWindow: 0, Writer: WriterNative, TempSuffix: ".tmp"}
	assert.NoError(t, valid.Validate())

	testCases := map[string]Config{
		"negative window": {MatchWindow: -1, Writer: WriterNative, TempSuffix: ".tmp"},
		"unknown writer":  {MatchWindow: 60, Writer: "magic", TempSuffix: ".tmp"},
		"empty suffix":    {MatchWindow: 60, Writer: WriterExifTool},
	}
	for name, conf := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, conf.Validate())
		})
	}
}
