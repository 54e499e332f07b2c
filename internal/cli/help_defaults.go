package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commandExamples = map[string]string{
	"blobctl": strings.TrimSpace(`
blobctl blob list --container my-container --output json
blobctl blob continuation --num-blobs 51 --page-size 10
blobctl --config blobctl.yaml blob upload-dir --container my-container --source ./site`),
	"blobctl completion": strings.TrimSpace(`
blobctl completion zsh > "${fpath[1]}/_blobctl"
blobctl completion bash > /etc/bash_completion.d/blobctl`),
	"blobctl version": strings.TrimSpace(`
blobctl version
blobctl --version`),
	"blobctl blob list": strings.TrimSpace(`
blobctl blob list --container my-container --page-size 100 --include metadata
blobctl blob list --container my-container --location-mode primary-then-secondary --output json`),
	"blobctl blob continuation": strings.TrimSpace(`
blobctl blob continuation --num-blobs 51 --page-size 10
blobctl blob continuation --container paging-demo --keep-container`),
	"blobctl blob upload-dir": strings.TrimSpace(`
blobctl blob upload-dir --container my-container --source ./site --dry-run
blobctl blob upload-dir --container my-container --source ./site --concurrency 8 --metadata owner=web`),
	"blobctl blob download": strings.TrimSpace(`
blobctl blob download --container my-container --dest ./backup
blobctl blob download --container my-container --prefix logs/ --dest ./logs --dry-run`),
	"blobctl blob access-condition": strings.TrimSpace(`
blobctl blob access-condition --container my-container
blobctl blob access-condition --container my-container --blob notes.txt --output json`),
	"blobctl blob events": strings.TrimSpace(`
blobctl blob events --log-level info
blobctl blob events --container hooks-demo --output json`),
	"blobctl blob retry-policy": strings.TrimSpace(`
blobctl blob retry-policy --retry-count 5 --retry-interval 5s --log-level info
blobctl --config blobctl.yaml blob retry-policy --container retry-demo`),
	"blobctl blob delete-container": strings.TrimSpace(`
blobctl blob delete-container --container my-container --dry-run
blobctl blob delete-container --container my-container --no-confirm`),
	"blobctl blob properties": strings.TrimSpace(`
blobctl blob properties --container my-container
blobctl blob properties --container my-container --location-mode secondary-then-primary`),
}

func applyCommandHelpDefaults(root *cobra.Command) {
	walkCommands(root, func(cmd *cobra.Command) {
		if strings.TrimSpace(cmd.Long) == "" && strings.TrimSpace(cmd.Short) != "" {
			cmd.Long = cmd.Short
		}

		if strings.TrimSpace(cmd.Example) == "" {
			cmd.Example = defaultCommandExample(cmd)
		}
	})
}

func defaultCommandExample(cmd *cobra.Command) string {
	if example, ok := commandExamples[cmd.CommandPath()]; ok {
		return example
	}

	if cmd.HasAvailableSubCommands() {
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() || sub.Hidden {
				continue
			}
			return strings.TrimSpace(fmt.Sprintf(`
%s --help
%s --help`, cmd.CommandPath(), sub.CommandPath()))
		}
	}

	return strings.TrimSpace(fmt.Sprintf(`
%s --output table
%s --output json`, cmd.CommandPath(), cmd.CommandPath()))
}

func walkCommands(root *cobra.Command, visit func(*cobra.Command)) {
	visit(root)
	for _, child := range root.Commands() {
		walkCommands(child, visit)
	}
}
