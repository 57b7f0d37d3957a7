package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "zeugnis", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "abitur", "check"} {
		assert.True(t, names[want], "subcommand %s not registered", want)
	}
}

func TestPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	data := flags.Lookup("data")
	require.NotNil(t, data)
	assert.Equal(t, "d", data.Shorthand)
	assert.Equal(t, "", data.DefValue)

	quiet := flags.Lookup("quiet")
	require.NotNil(t, quiet)
	assert.Equal(t, "q", quiet.Shorthand)
	assert.Equal(t, "false", quiet.DefValue)

	verbose := flags.Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestReportFlags(t *testing.T) {
	flags := reportCmd.Flags()

	stream := flags.Lookup("stream")
	require.NotNil(t, stream)
	assert.Equal(t, "s", stream.Shorthand)
	assert.Equal(t, "", stream.DefValue)

	term := flags.Lookup("term")
	require.NotNil(t, term)
	assert.Equal(t, "2", term.DefValue)

	pid := flags.Lookup("pid")
	require.NotNil(t, pid)
	assert.Equal(t, "p", pid.Shorthand)
}

func TestCommandsRequireArgs(t *testing.T) {
	assert.Error(t, reportCmd.Args(reportCmd, nil))
	assert.NoError(t, reportCmd.Args(reportCmd, []string{"11"}))
	assert.Error(t, abiturCmd.Args(abiturCmd, []string{"a", "b"}))
	assert.NoError(t, abiturCmd.Args(abiturCmd, []string{"p001"}))
}
