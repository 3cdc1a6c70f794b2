package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vlower/internal/config"
	"vlower/internal/loader"
)

const program = `
defs:
  - id: app::double
    vis: pub
    sig: {inputs: [u8], output: u8}
  - id: app::bad
    vis: pub
    sig: {}
items:
  - id: app::double
    line: 1
    params: [{name: x}]
    body: {stmts: [{call: builtin::requires, args: ["x < 128"]}], tail: "x * 2"}
  - id: app::bad
    line: 5
    attrs: [verifier::unknown_thing]
    body: {tail: "()"}
`

func writeProgram(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(program), 0o644))
	return path
}

func Test_LowerExecYAML(t *testing.T) {
	ProgramFiles, OutputFormat, ItemOrder = []string{writeProgram(t)}, "yaml", "fifo"
	var stdout, stderr bytes.Buffer
	failed, err := lowerExec(&stdout, &stderr)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Contains(t, stderr.String(), "unrecognized verifier attribute unknown_thing")

	var report struct {
		Functions []struct {
			Name    string   `yaml:"name"`
			Require []string `yaml:"require"`
		} `yaml:"functions"`
		Diagnostics []string `yaml:"diagnostics"`
	}
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &report))
	require.Len(t, report.Functions, 1)
	assert.Equal(t, "app::double", report.Functions[0].Name)
	assert.Equal(t, []string{"x < 128"}, report.Functions[0].Require)
	assert.Len(t, report.Diagnostics, 1)
}

func Test_LowerExecText(t *testing.T) {
	ProgramFiles, OutputFormat, ItemOrder = []string{writeProgram(t)}, "text", "lifo"
	var stdout, stderr bytes.Buffer
	_, err := lowerExec(&stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "app::double")
	assert.Contains(t, stdout.String(), "1 lowered, 0 external, 1 rejected")
}

func Test_LowerExecRejectsBadInput(t *testing.T) {
	ProgramFiles, OutputFormat, ItemOrder = nil, "text", "fifo"
	_, err := lowerExec(&bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)

	ProgramFiles = []string{filepath.Join(t.TempDir(), "missing.yaml")}
	_, err = lowerExec(&bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)

	ProgramFiles, OutputFormat = []string{writeProgram(t)}, "json"
	_, err = lowerExec(&bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)

	ProgramFiles, OutputFormat, ItemOrder = []string{writeProgram(t)}, "text", "bfs"
	_, err = lowerExec(&bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func Test_InspectTables(t *testing.T) {
	l := loader.NewLoader()
	require.NoError(t, l.LoadFromFiles([]string{writeProgram(t)}))
	defs, items := inspectTables(l)
	require.Len(t, defs, 3)
	assert.Equal(t, []string{"app::double", "pub", "fn(u8) -> u8", ""}, defs[1])
	require.Len(t, items, 3)
	assert.Equal(t, "fn", items[1][0])
	assert.Equal(t, "app::bad", items[2][1])
}

func Test_ApplyConfig(t *testing.T) {
	Conf = config.Default()
	Conf.Lower.Files = []string{"from-config.yaml"}
	Conf.Lower.Order = "lifo"
	defer func() { Conf = config.Default() }()

	require.NoError(t, lowerCommand.Flags().Set("format", "yaml"))
	applyConfig(lowerCommand)
	assert.Equal(t, []string{"from-config.yaml"}, ProgramFiles)
	assert.Equal(t, "lifo", ItemOrder)
	assert.Equal(t, "yaml", OutputFormat)
}
