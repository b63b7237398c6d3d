package cli

import (
	"github.com/spf13/cobra"

	"github.com/mixsight/mixsight/internal/logging"
)

// RootCmd is the base command; subcommands register themselves in init().
var RootCmd = &cobra.Command{
	Use:   "mixsight",
	Short: "Mixpanel funnel analysis service",
	Long: `mixsight serves funnel analyses over Mixpanel's raw event export API.

It joins pageview, conversion, and payment event streams by user identity,
resolves first-touch campaign attribution, and reports 3-step and 2-step
funnel tables with workspace subscription revenue.`,
}

// Execute runs the CLI. Errors are reported by cobra; the caller decides the
// exit code.
func Execute() error {
	defer func() { _ = logging.Sync() }()
	return RootCmd.Execute()
}
