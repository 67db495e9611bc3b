// File: cmd/cosctl/root.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cosctl/internal/flags"
	"cosctl/internal/logger"
	"cosctl/pkg/formatter"
)

type rootFlags struct {
	debug  bool
	output string
}

func newRootCmd() *cobra.Command {
	cmdFlags := rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "cosctl",
		Short: "cosctl is a command-line tool for S3-compatible object storage.",
		Long: `A CLI for Cloud Object Storage and other S3-compatible services. Manage
buckets and objects, decode the archive state of objects, resolve regional
endpoints and run the standard and archive demo workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			if cmdFlags.debug {
				logger.SetDebug(true)
			}

			output, err := formatter.ParseOutputFormat(cmdFlags.output)
			if err != nil {
				return err
			}
			app.Output = output
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cmdFlags.debug, flags.Debug, flags.DebugShort, false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cmdFlags.output, flags.Output, flags.OutputShort, string(formatter.OutputTable), "Output format: table, json or yaml")

	rootCmd.AddCommand(
		newConfigCmd(),
		newBucketCmd(),
		newObjectCmd(),
		newArchiveCmd(),
		newEndpointsCmd(),
		newRunCmd(),
	)
	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute(app *appContainer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(withApp(ctx, app)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// render prints v in the output format selected with --output
func render(cmd *cobra.Command, app *appContainer, v interface{}, table func() string) error {
	return formatter.Render(cmd.OutOrStdout(), app.Output, v, table)
}
