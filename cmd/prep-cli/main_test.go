package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `target,a,b,city
0,1,2,oslo
1,1,2,oslo
1,3,,lima
1,3,,lima
0,0.5,1,NA
`

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "", "-version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "prep ")
	assert.Contains(t, stdout, "Go Version:")
}

func TestRunHelp(t *testing.T) {
	_, stderr, err := runCLI(t, "", "-h")
	require.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, stderr, "Usage: prep-cli")
	assert.Contains(t, stderr, "-dedupe")
}

func TestRunMissingInput(t *testing.T) {
	_, _, err := runCLI(t, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly one input file")
}

func TestRunPassthrough(t *testing.T) {
	stdout, _, err := runCLI(t, sampleCSV, "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "target,a,b,city", lines[0])
	assert.Equal(t, "0,0.5,1,", lines[5], "missing markers are written as empty cells")
}

func TestRunCleaningSteps(t *testing.T) {
	input := writeFile(t, "in.csv", sampleCSV)

	stdout, stderr, err := runCLI(t, "", "-impute", "-strategy", "mode", "-dedupe", "-subset", "a,b", input)
	require.NoError(t, err)
	assert.Contains(t, stderr, "loaded data")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	// mode fills b with 2 and city with lima, the smaller of the tied modes;
	// rows 1 and 3 repeat their a,b pair
	assert.Equal(t, []string{
		"target,a,b,city",
		"0,1,2,oslo",
		"1,3,2,lima",
		"0,0.5,1,lima",
	}, lines)
}

func TestRunOutputFormats(t *testing.T) {
	input := writeFile(t, "in.csv", sampleCSV)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "out.json")
	_, _, err := runCLI(t, "", "-o", jsonPath, input)
	require.NoError(t, err)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `[{"target":0,"a":1,"b":2,"city":"oslo"}`), string(data))

	stdout, _, err := runCLI(t, "", "-format", "jsonl", input)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 5)

	_, _, err = runCLI(t, "", "-format", "xml", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: xml")
}

func TestRunModel(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("target,x\n")
	for i := range 10 {
		fmt.Fprintf(&sb, "0,%.1f\n", float64(i)/10)
	}
	for i := range 10 {
		fmt.Fprintf(&sb, "1,%.1f\n", 5+float64(i)/10)
	}
	input := writeFile(t, "model.csv", sb.String())

	stdout, _, err := runCLI(t, "", "-model", input)
	require.NoError(t, err)
	assert.Equal(t, "Accuracy: 1.0\n", stdout)

	stdout, _, err = runCLI(t, "", "-model", "-report", "-scale", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Classification Report:")
}

func TestRunInvalidConfiguration(t *testing.T) {
	input := writeFile(t, "in.csv", sampleCSV)

	_, _, err := runCLI(t, "", "-strategy", "knn", "-impute", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, _, err = runCLI(t, "", "-config", "/does/not/exist.yaml", input)
	require.Error(t, err)
}

func TestRunConfigLayers(t *testing.T) {
	input := writeFile(t, "in.csv", sampleCSV)
	cfgPath := writeFile(t, "prep.yaml", "impute_strategy: median\nlog_level: debug\n")
	envPath := writeFile(t, "prep.env", "PREP_LOG_FORMAT=json\n")

	t.Setenv("PREP_LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("PREP_LOG_FORMAT"))

	_, stderr, err := runCLI(t, "", "-config", cfgPath, "-env-file", envPath, "-impute", input)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"loaded data"`, "json format from the env file, debug level from the config file")
	assert.Contains(t, stderr, `"op":"impute"`)
	assert.Contains(t, stderr, `"duration":`)

	// an explicit flag wins over the file
	_, stderr, err = runCLI(t, "", "-config", cfgPath, "-log-level", "error", input)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "loaded data")
}

func TestRunMetrics(t *testing.T) {
	input := writeFile(t, "in.csv", sampleCSV)

	_, stderr, err := runCLI(t, "", "-dedupe", "-metrics", "-log-level", "warn", input)
	require.NoError(t, err)
	assert.Contains(t, stderr, "OPERATION")
	assert.Contains(t, stderr, "RemoveDuplicates")
	assert.Contains(t, stderr, "5 -> 4")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
