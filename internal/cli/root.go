package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func NewRootCmd() *cobra.Command {
	var projectRoot string

	root := &cobra.Command{
		Use:   "kscore",
		Short: "Keystroke study wizard and exporter",
		Long: "kscore runs the local typing study (consent, baseline and essay typing, PHQ-9 and GAD-7) " +
			"and exports each participant's data as a single archive.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&projectRoot, "root", ".", "Project root holding config/ and logs/")

	root.AddCommand(
		newServeCmd(&projectRoot),
		newBundleCmd(&projectRoot),
	)

	root.Version = Version
	root.SetVersionTemplate(fmt.Sprintf("kscore %s\n", Version))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
