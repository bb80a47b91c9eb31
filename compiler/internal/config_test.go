package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	testData := []struct {
		content  string
		expected *Config
	}{
		{
			content:  "",
			expected: DefaultConfig(),
		},
		{
			content:  "out: build\nmax_errors: 10\n",
			expected: &Config{Out: "build", MaxErrors: 10, Prefix: "oberon_"},
		},
		{
			content:  "skip_check: true\nprefix: ob_\nverbose: true\njobs: 4\n",
			expected: &Config{Out: "out", SkipCheck: true, MaxErrors: 1, Prefix: "ob_", Verbose: true, Jobs: 4},
		},
	}
	for i, test := range testData {
		path := writeFile(t, dir, "config.yaml", test.content)
		conf, err := LoadConfig(path)
		require.Nil(t, err, i)
		assert.Equal(t, test.expected, conf, i)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	testData := []struct {
		content  string
		expected string
	}{
		{content: "default_array_len: 100\n", expected: "field default_array_len not found"},
		{content: "max_errors: 0\n", expected: "max_errors must be at least 1"},
		{content: "jobs: -1\n", expected: "jobs must not be negative"},
		{content: "prefix: \"\"\n", expected: "prefix must not be empty"},
		{content: "out: [a\n", expected: "config: parse"},
	}
	for _, test := range testData {
		path := writeFile(t, dir, "config.yaml", test.content)
		_, err := LoadConfig(path)
		require.NotNil(t, err, test.content)
		assert.Contains(t, err.Error(), test.expected)
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "config: open")
}
