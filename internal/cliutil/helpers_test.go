package cliutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/towardsthecloud/blobctl/internal/config"
)

// newFlaggedRoot builds a test root with the given persistent flags set and
// returns it with its stdout and stderr buffers.
func newFlaggedRoot(t *testing.T, stdin string, flags map[string]string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv(config.EnvPath, "")

	scenario := &cobra.Command{Use: "scenario", RunE: func(*cobra.Command, []string) error { return nil }}
	root := NewTestRootCommand(scenario)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)

	for name, value := range flags {
		require.NoError(t, root.PersistentFlags().Set(name, value), "set --%s", name)
	}
	return root, stdout, stderr
}

func newTestRuntime(t *testing.T, stdin string, flags map[string]string) (*cobra.Command, CommandRuntime, *bytes.Buffer) {
	t.Helper()
	root, stdout, _ := newFlaggedRoot(t, stdin, flags)
	runtime, err := NewCommandRuntime(root)
	require.NoError(t, err)
	return root, runtime, stdout
}
