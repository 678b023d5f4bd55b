package cli

import (
	"github.com/spf13/cobra"

	"github.com/garnizeh/eduverify/internal/verification"
)

func newPendingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List projects awaiting their first verification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, h, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			projects, err := verification.NewService(h.Directory, opts.logger()).Pending(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), projects)
			}
			return printProjects(cmd.OutOrStdout(), projects)
		},
	}
}
