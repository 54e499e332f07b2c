package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/towardsthecloud/blobctl/internal/cli"
	"github.com/towardsthecloud/blobctl/internal/version"
)

func main() {
	if err := newDocsCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDocsCommand() *cobra.Command {
	var outDir string
	var formats []string

	cmd := &cobra.Command{
		Use:   "blobctl-docs",
		Short: "Generate blobctl man pages and markdown reference",
		RunE: func(_ *cobra.Command, _ []string) error {
			return generate(outDir, formats)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&outDir, "out", "docs", "Output directory")
	cmd.Flags().StringSliceVar(&formats, "format", []string{"man", "markdown"}, "Formats to generate: man, markdown")

	return cmd
}

func generate(outDir string, formats []string) error {
	root := cli.NewRootCommand()
	root.DisableAutoGenTag = true

	for _, format := range formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "man":
			date, err := resolveManHeaderDate()
			if err != nil {
				return err
			}
			dir := filepath.Join(outDir, "man")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			header := &doc.GenManHeader{
				Title:   "BLOBCTL",
				Section: "1",
				Date:    &date,
				Source:  "blobctl " + version.Version,
				Manual:  "blobctl manual",
			}
			if err := doc.GenManTree(root, header, dir); err != nil {
				return fmt.Errorf("generate man pages: %w", err)
			}
		case "markdown":
			dir := filepath.Join(outDir, "reference")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			if err := doc.GenMarkdownTree(root, dir); err != nil {
				return fmt.Errorf("generate markdown: %w", err)
			}
		default:
			return fmt.Errorf("unsupported format %q (valid: man, markdown)", format)
		}
	}

	return nil
}

// resolveManHeaderDate honours SOURCE_DATE_EPOCH so generated pages are
// reproducible; without it the Unix epoch is used.
func resolveManHeaderDate() (time.Time, error) {
	raw := strings.TrimSpace(os.Getenv("SOURCE_DATE_EPOCH"))
	if raw == "" {
		return time.Unix(0, 0).UTC(), nil
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse SOURCE_DATE_EPOCH %q: %w", raw, err)
	}
	return time.Unix(seconds, 0).UTC(), nil
}
