package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/protocol"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	command := newCommand()
	command.Writer = &out

	err := command.Run(t.Context(), append([]string{serviceName}, args...))

	return out.String(), err
}

func TestNodesCommand(t *testing.T) {
	out, err := execute(t, "nodes")
	require.NoError(t, err)

	assert.Equal(t, "LoadTitanic\nFilter\nDescribe\nLogisticModel\n", out)
}

func TestNodesCommand_JSON(t *testing.T) {
	out, err := execute(t, "nodes", "--json")
	require.NoError(t, err)

	var nodes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 4)
	assert.Equal(t, "LoadTitanic", nodes[0]["id"])
	assert.NotNil(t, nodes[0]["schema"])
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "people.csv", "Name,Age\nann,30\nbob,12\ncat,45\n")
	file := writeFile(t, dir, "people.hcl", `
pipeline "adults" {
  step "LoadTitanic" {}
  step "Filter" {
    params = { query = "Age >= 18" }
  }
}

pipeline "summary" {
  step "LoadTitanic" {}
  step "Describe" {}
}
`)

	out, err := execute(t, "--dataset", data, "run", file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var adults map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &adults))
	assert.Equal(t, "adults", adults["pipeline"])
	assert.NotEmpty(t, adults["run_id"])
	assert.Len(t, adults["output"].(map[string]any)["preview"], 2)

	out, err = execute(t, "--dataset", data, "run", "--pipeline", "summary", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"pipeline":"summary"`)
	assert.NotContains(t, out, `"pipeline":"adults"`)
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "broken.hcl", `
pipeline "broken" {
  step "Teleport" {}
}
`)

	_, err := execute(t, "run", file)
	require.ErrorIs(t, err, protocol.ErrUnknownNode)
	assert.Contains(t, err.Error(), "broken")

	_, err = execute(t, "run")
	require.ErrorIs(t, err, ErrMissingArgument)

	_, err = execute(t, "run", "--pipeline", "other", file)
	require.ErrorIs(t, err, ErrNoPipelines)
}

func TestScheduleCommand_NothingScheduled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adhoc.hcl", `pipeline "adhoc" {}`)

	_, err := execute(t, "schedule", dir)
	require.ErrorIs(t, err, ErrNoPipelines)

	_, err = execute(t, "schedule")
	require.ErrorIs(t, err, ErrMissingArgument)
}

func TestScheduleCommand_InvalidSchedule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.hcl", `
pipeline "bad" {
  schedule = "whenever"
}
`)

	_, err := execute(t, "schedule", dir)
	assert.ErrorContains(t, err, "invalid cron expression")
}
