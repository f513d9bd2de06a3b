package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunFile(t *testing.T) {
	path := writeFile(t, "main.bs", "x = true\nprint x\nprint (true or false) and not false\nprint x and 0\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-env-file", "", path}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "true\ntrue\nfalse\n", stdout.String())
}

func TestRunStdinWithVerify(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-env-file", "", "-verify", "-"}, strings.NewReader("y = 1\nprint y and 0"), &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "false\n", stdout.String())
}

func TestRunDiagnostic(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-env-file", "", "-"}, strings.NewReader("print t\nprint z"), &stdout, &stderr)

	assert.Equal(t, exitDiagnostic, code)
	assert.Equal(t, "true\n", stdout.String())
	assert.Contains(t, stderr.String(), `Run Error: variable "z" referenced before assignment at line 2 char 7`)
}

func TestRunWithConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.jsonl")
	cfgPath := writeFile(t, "config.yaml", `
logger:
  level: error
  type: json
storages:
  - name: console
    type: stdout
    config:
      with_position: true
  - name: archive
    type: jsonl
    config:
      path: `+out+`
processors:
  - name: shout
    type: case
    config:
      case: upper
`)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-env-file", "", "-"}, strings.NewReader("print t\n  print f"), &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "1:1 TRUE\n2:3 FALSE\n", stdout.String())

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))
}

func TestRunUsageErrors(t *testing.T) {
	tests := [][]string{
		{},
		{"a.bs", "b.bs"},
		{"-watch", "-"},
		{"-unknown", "a.bs"},
		{"-config", "/nonexistent/config.yaml", "a.bs"},
	}

	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitFailure, run(append([]string{"-env-file", ""}, args...), strings.NewReader(""), &stdout, &stderr), "args %v", args)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-env-file", "", filepath.Join(t.TempDir(), "missing.bs")}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "IO Error: cannot read program")
}
