package cliutil

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const (
	ActionWouldDelete = "would-delete"
	ActionPending     = "pending"
	ActionDeleted     = "deleted"
	ActionCancelled   = "cancelled"
)

// Footprint totals the blobs a destructive plan removes.
type Footprint struct {
	Blobs int
	Bytes int64
}

// Add counts one blob of the given size.
func (f *Footprint) Add(size int64) {
	f.Blobs++
	if size > 0 {
		f.Bytes += size
	}
}

// Size renders Bytes with binary units, e.g. "1.5 KiB".
func (f Footprint) Size() string {
	return humanize.IBytes(uint64(f.Bytes))
}

func (f Footprint) String() string {
	noun := "blobs"
	if f.Blobs == 1 {
		noun = "blob"
	}
	return fmt.Sprintf("%d %s, %s", f.Blobs, noun, f.Size())
}

// DestructiveActionPlan describes a set of rows that may be mutated, with a
// confirmation prompt and an Execute callback per row. A non-nil Footprint is
// appended to the prompt.
type DestructiveActionPlan struct {
	Headers       []string
	Rows          [][]string
	ActionColumn  int
	ConfirmPrompt string
	Footprint     *Footprint
	Execute       func(rowIndex int) string
}

// Prompt returns the confirmation question, with the footprint when known.
func (p DestructiveActionPlan) Prompt() string {
	if p.Footprint == nil {
		return p.ConfirmPrompt
	}
	return fmt.Sprintf("%s (%s)", p.ConfirmPrompt, p.Footprint)
}

// RunDestructiveActionPlan writes the plan unchanged when it is empty or a dry
// run. Otherwise it asks for confirmation and runs Execute per row.
func RunDestructiveActionPlan(cmd *cobra.Command, runtime CommandRuntime, plan DestructiveActionPlan) error {
	if len(plan.Rows) == 0 {
		return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
	}

	if runtime.Options.DryRun {
		return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
	}

	ok, err := runtime.Prompter.Confirm(plan.Prompt(), runtime.Options.NoConfirm)
	if err != nil {
		return err
	}
	if !ok {
		SetActionForAllRows(plan.Rows, plan.ActionColumn, ActionCancelled)
		return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
	}

	if plan.Execute != nil {
		for i := range plan.Rows {
			next := strings.TrimSpace(plan.Execute(i))
			if next == "" {
				continue
			}
			plan.Rows[i][plan.ActionColumn] = next
		}
	}

	return WriteDataset(cmd, runtime, plan.Headers, plan.Rows)
}

// SetActionForAllRows sets the action column to the given value for every row.
func SetActionForAllRows(rows [][]string, actionColumn int, action string) {
	for i := range rows {
		rows[i][actionColumn] = action
	}
}

// FailedAction formats a failure string from an error.
func FailedAction(err error) string {
	if err == nil {
		return "failed:unknown"
	}
	return FailedActionMessage(err.Error())
}

// FailedActionMessage formats a failure string from a reason.
func FailedActionMessage(reason string) string {
	clean := strings.TrimSpace(reason)
	if clean == "" {
		clean = "unknown"
	}
	return "failed:" + clean
}

// SkippedActionMessage formats a skip string from a reason.
func SkippedActionMessage(reason string) string {
	clean := strings.TrimSpace(reason)
	if clean == "" {
		clean = "skipped"
	}
	return "skipped:" + clean
}
