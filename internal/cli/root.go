// Package cli wires the refitgen commands together.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the refitgen CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refitgen",
		Short: "Generate Refit client interfaces from OpenAPI documents",
		Long: "refitgen translates Swagger 2.0 and OpenAPI 3.x documents into C# interfaces " +
			"for the Refit HTTP client library.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML, JSON, TOML or .refitter)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd(), newVersionCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd
}

// flagUsageError turns cobra flag errors (like unknown flags) into usage
// errors that carry the command's help text.
func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
