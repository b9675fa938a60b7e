package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set via ldflags during build
var Version = "dev"

func Execute() {
	// Optional .env supplies SAMPLE_RATE and RENDER_PROFILE defaults
	_ = godotenv.Load()

	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "metrome",
		Short:        "metrome turns rhythm scores into click tracks",
		SilenceUsage: true,
	}

	cmd.AddCommand(renderCmd(), parseCmd(), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the metrome version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "metrome %s\n", Version)
		},
	}
}
