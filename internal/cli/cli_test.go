package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("0.1.0-test", []string{"--version"})
	})

	assert.NoError(t, err)
	assert.Contains(t, output, "subplot 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "subplot 1.2.3", strings.TrimSpace(output))
}

func TestVersionAfterSubcommand(t *testing.T) {
	output := captureOutput(t, func() {
		require.NoError(t, RunWithArgs("1.2.3", []string{"plot", "--version"}))
	})
	assert.Equal(t, "subplot 1.2.3", strings.TrimSpace(output))
}

func TestAllSubcommandsExist(t *testing.T) {
	expected := []string{"collect", "plot", "summary", "status", "purge"}
	parser, _, _ := buildParser("test")

	for _, name := range expected {
		cmd := parser.Find(name)
		assert.NotNil(t, cmd, "subcommand %q should exist", name)
	}
}

func TestSubcommandsDispatch(t *testing.T) {
	tests := []struct {
		args []string
		want func(*commands) interface{}
	}{
		{[]string{"collect"}, func(c *commands) interface{} { return c.Collect }},
		{[]string{"plot"}, func(c *commands) interface{} { return c.Plot }},
		{[]string{"summary"}, func(c *commands) interface{} { return c.Summary }},
		{[]string{"status"}, func(c *commands) interface{} { return c.Status }},
		{[]string{"purge", "--all"}, func(c *commands) interface{} { return c.Purge }},
	}
	for _, tc := range tests {
		t.Run(tc.args[0], func(t *testing.T) {
			_, cmds, matched, err := parseOnly(t, tc.args...)
			require.NoError(t, err)
			assert.Same(t, tc.want(cmds), matched)
		})
	}
}

func TestGlobalFlagsDefaults(t *testing.T) {
	globals, _, _, err := parseOnly(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "Python", globals.Forum)
	assert.Equal(t, 0, globals.Year)
	assert.False(t, globals.JSON)
	assert.False(t, globals.Verbose)
}

func TestGlobalFlagsForumAndYear(t *testing.T) {
	globals, _, _, err := parseOnly(t, "-r", "golang", "-y", "2021", "summary")
	require.NoError(t, err)
	assert.Equal(t, "golang", globals.Forum)
	assert.Equal(t, 2021, globals.Year)

	globals, _, _, err = parseOnly(t, "--forum", "rust", "--year", "2019", "collect")
	require.NoError(t, err)
	assert.Equal(t, "rust", globals.Forum)
	assert.Equal(t, 2019, globals.Year)
}

func TestGlobalFlagsJSON(t *testing.T) {
	globals, _, _, err := parseOnly(t, "--json", "status")
	require.NoError(t, err)
	assert.True(t, globals.JSON)
}

func TestGlobalFlagsVerbose(t *testing.T) {
	globals, _, _, err := parseOnly(t, "--verbose", "status")
	require.NoError(t, err)
	assert.True(t, globals.Verbose)
}

func TestGlobalFlagsConfig(t *testing.T) {
	globals, _, _, err := parseOnly(t, "--config", "/tmp/test.yaml", "--data-dir", "/tmp/rows", "status")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.yaml", globals.Config)
	assert.Equal(t, "/tmp/rows", globals.DataDir)
}

func TestYearMustBeInteger(t *testing.T) {
	_, _, _, err := parseOnly(t, "-y", "twenty", "summary")
	require.Error(t, err)
}

func TestPlotChartFlag(t *testing.T) {
	_, cmds, _, err := parseOnly(t, "plot", "--chart", "hour")
	require.NoError(t, err)
	assert.Equal(t, "hour", cmds.Plot.Chart)

	_, _, _, err = parseOnly(t, "plot", "--out-dir", "/tmp/out")
	require.Error(t, err, "chart output path is not configurable")

	_, _, _, err = parseOnly(t, "plot", "--chart", "minute")
	require.Error(t, err)
}

func TestSummaryFlagsDefaults(t *testing.T) {
	_, cmds, _, err := parseOnly(t, "summary")
	require.NoError(t, err)
	assert.Equal(t, "date", cmds.Summary.Mode)
	assert.False(t, cmds.Summary.All)

	_, cmds, _, err = parseOnly(t, "summary", "--mode", "weekday", "--all")
	require.NoError(t, err)
	assert.Equal(t, "weekday", cmds.Summary.Mode)
	assert.True(t, cmds.Summary.All)
}

func TestUnknownSubcommandFails(t *testing.T) {
	_, _, _, err := parseOnly(t, "nonexistent")
	require.Error(t, err)
}

func TestPurgeRequiresAll(t *testing.T) {
	err := RunWithArgs("test", []string{"purge"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all flag is required")
}

func TestHelpFlagDoesNotError(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("test", []string{"--help"})
	})
	assert.NoError(t, err)
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "collect")
	assert.Contains(t, output, "summary")
}
