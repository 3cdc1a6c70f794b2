package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func Test_LoadOverDefaults(t *testing.T) {
	path := write(t, `
[lower]
files = ["lib.yaml", "/abs/extra.yaml"]
order = "lifo"

[log]
level = "debug"
`)
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "lib.yaml"), "/abs/extra.yaml"}, conf.Lower.Files)
	assert.Equal(t, "lifo", conf.Lower.Order)
	assert.Equal(t, "text", conf.Lower.Format)
	assert.Equal(t, "vstd", conf.Lower.VstdCrate)
	assert.Equal(t, "debug", conf.Log.Level)
}

func Test_LoadRejects(t *testing.T) {
	for name, text := range map[string]string{
		"format": "[lower]\nformat = \"json\"\n",
		"order":  "[lower]\norder = \"bfs\"\n",
		"type":   "[lower]\norder = 3\n",
		"syntax": "[lower\n",
	} {
		_, err := Load(write(t, text))
		assert.Error(t, err, name)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func Test_Validate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	c.Lower.VstdCrate = ""
	assert.Error(t, c.Validate())
}
