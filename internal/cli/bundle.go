package cli

import (
	"errors"
	"fmt"

	"kscore-go/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBundleCmd(projectRoot *string) *cobra.Command {
	var payloadPath string
	var out string

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Rebuild an export archive from a saved payload",
		Long: "Read a payload JSON written by an earlier export and write the archive again. " +
			"Without --out the destination is asked for on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newApp(*projectRoot)
			if err != nil {
				return err
			}
			defer rt.close()

			payload, err := services.ReadPayload(payloadPath)
			if err != nil {
				return err
			}

			var picker services.Picker = services.NewPromptPicker(cmd.InOrStdin(), cmd.OutOrStdout())
			if cmd.Flags().Changed("out") {
				picker = services.FixedPicker(out)
			}

			result, err := rt.exporter.Export(cmd.Context(), payload, picker)
			if errors.Is(err, services.ErrUserCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Export cancelled.")
				return nil
			}
			if err != nil {
				rt.log.Error("Bundle failed", zap.String("payload", payloadPath), zap.Error(err))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d files)\n", result.Path, len(result.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "Payload JSON saved next to an earlier export")
	cmd.Flags().StringVar(&out, "out", "", "Destination archive path")
	_ = cmd.MarkFlagRequired("payload")

	return cmd
}
