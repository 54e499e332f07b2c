package cliutil

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionMessages(t *testing.T) {
	assert.Equal(t, "failed:unknown", FailedAction(nil))
	assert.Equal(t, "failed:boom", FailedAction(errors.New("boom")))
	assert.Equal(t, "failed:unknown", FailedActionMessage("  "))
	assert.Equal(t, "failed:access denied", FailedActionMessage("  access denied  "))
	assert.Equal(t, "skipped:skipped", SkippedActionMessage(""))
	assert.Equal(t, "skipped:folder marker", SkippedActionMessage("folder marker"))
}

func TestSetActionForAllRows(t *testing.T) {
	rows := [][]string{
		{"paginationsample-1", ActionPending},
		{"paginationsample-2", ActionPending},
	}
	SetActionForAllRows(rows, 1, ActionCancelled)
	assert.Equal(t, [][]string{
		{"paginationsample-1", ActionCancelled},
		{"paginationsample-2", ActionCancelled},
	}, rows)

	SetActionForAllRows(nil, 0, ActionDeleted)
}

func containerPlan(execute func(int) string, names ...string) DestructiveActionPlan {
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, ActionPending})
	}
	return DestructiveActionPlan{
		Headers:       []string{"container", "action"},
		Rows:          rows,
		ActionColumn:  1,
		ConfirmPrompt: "Delete containers",
		Execute:       execute,
	}
}

func decodeActions(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	var records []map[string]string
	require.NoError(t, json.Unmarshal(raw, &records))

	actions := make(map[string]string, len(records))
	for _, record := range records {
		actions[record["container"]] = record["action"]
	}
	return actions
}

func TestRunDestructiveActionPlan(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		flags     map[string]string
		execute   func(int) string
		want      map[string]string
		wantCalls int
	}{
		{
			name:  "dry run leaves the plan untouched",
			flags: map[string]string{"dry-run": "true"},
			execute: func(int) string {
				return ActionDeleted
			},
			want: map[string]string{"alpha": ActionPending, "beta": ActionPending},
		},
		{
			name:  "declined prompt cancels every row",
			stdin: "n\n",
			execute: func(int) string {
				return ActionDeleted
			},
			want: map[string]string{"alpha": ActionCancelled, "beta": ActionCancelled},
		},
		{
			name:  "confirmed prompt executes every row",
			stdin: "y\n",
			execute: func(int) string {
				return ActionDeleted
			},
			want:      map[string]string{"alpha": ActionDeleted, "beta": ActionDeleted},
			wantCalls: 2,
		},
		{
			name:  "no-confirm records per-row results",
			flags: map[string]string{"no-confirm": "true"},
			execute: func(row int) string {
				if row == 1 {
					return FailedActionMessage("BucketNotEmpty")
				}
				return ActionDeleted
			},
			want:      map[string]string{"alpha": ActionDeleted, "beta": "failed:BucketNotEmpty"},
			wantCalls: 2,
		},
		{
			name:  "blank result keeps the planned action",
			flags: map[string]string{"no-confirm": "true"},
			execute: func(int) string {
				return "  "
			},
			want:      map[string]string{"alpha": ActionPending, "beta": ActionPending},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := map[string]string{"output": "json"}
			for name, value := range tt.flags {
				flags[name] = value
			}
			root, runtime, stdout := newTestRuntime(t, tt.stdin, flags)

			calls := 0
			plan := containerPlan(func(row int) string {
				calls++
				return tt.execute(row)
			}, "alpha", "beta")

			require.NoError(t, RunDestructiveActionPlan(root, runtime, plan))
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.want, decodeActions(t, stdout.Bytes()))
		})
	}
}

func TestRunDestructiveActionPlanWithoutRowsSkipsPrompt(t *testing.T) {
	root, runtime, stdout := newTestRuntime(t, "", map[string]string{"output": "json"})

	require.NoError(t, RunDestructiveActionPlan(root, runtime, containerPlan(nil)))
	assert.Empty(t, decodeActions(t, stdout.Bytes()))
}

func TestRunDestructiveActionPlanNilExecute(t *testing.T) {
	root, runtime, stdout := newTestRuntime(t, "", map[string]string{"output": "json", "no-confirm": "true"})

	require.NoError(t, RunDestructiveActionPlan(root, runtime, containerPlan(nil, "alpha")))
	assert.Equal(t, map[string]string{"alpha": ActionPending}, decodeActions(t, stdout.Bytes()))
}

func TestFootprint(t *testing.T) {
	var footprint Footprint
	assert.Equal(t, "0 blobs, 0 B", footprint.String())

	footprint.Add(1)
	assert.Equal(t, "1 blob, 1 B", footprint.String())

	footprint.Add(1535)
	footprint.Add(-1)
	assert.Equal(t, 3, footprint.Blobs)
	assert.Equal(t, int64(1536), footprint.Bytes)
	assert.Equal(t, "1.5 KiB", footprint.Size())
	assert.Equal(t, "3 blobs, 1.5 KiB", footprint.String())
}

func TestRunDestructiveActionPlanPromptsWithFootprint(t *testing.T) {
	tests := []struct {
		name      string
		footprint *Footprint
		want      string
	}{
		{name: "without footprint", want: "Delete containers? [y/N]: "},
		{name: "with footprint", footprint: &Footprint{Blobs: 51, Bytes: 2 << 20}, want: "Delete containers (51 blobs, 2.0 MiB)? [y/N]: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, stdout, stderr := newFlaggedRoot(t, "n\n", map[string]string{"output": "json"})
			runtime, err := NewCommandRuntime(root)
			require.NoError(t, err)

			plan := containerPlan(nil, "alpha")
			plan.Footprint = tt.footprint

			require.NoError(t, RunDestructiveActionPlan(root, runtime, plan))
			assert.Contains(t, stderr.String(), tt.want)
			assert.Equal(t, map[string]string{"alpha": ActionCancelled}, decodeActions(t, stdout.Bytes()))
		})
	}
}

func TestNewServiceGroupCommand(t *testing.T) {
	cmd := NewServiceGroupCommand("blob", "Run blob storage scenarios")
	assert.Equal(t, "blob", cmd.Use)
	assert.Equal(t, "Run blob storage scenarios", cmd.Short)
	assert.Contains(t, cmd.Long, "Each subcommand runs one blob scenario")

	cmd.SetOut(io.Discard)
	assert.NoError(t, cmd.RunE(cmd, nil))
}

func TestNewTestRootCommand(t *testing.T) {
	root := NewTestRootCommand(&cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { return nil }})

	assert.Equal(t, "blobctl", root.Use)
	assert.True(t, root.HasSubCommands())
	for _, flag := range []string{"profile", "region", "dry-run", "output", "no-confirm", "version", "config", "endpoint", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "persistent flag %q", flag)
	}
}
