package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garnizeh/eduverify/internal/verification"
)

func newVerifyCmd(opts *options) *cobra.Command {
	var as, comment string

	cmd := &cobra.Command{
		Use:   "verify <project-id>",
		Short: "Record a verification as a verifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if as == "" {
				return fmt.Errorf("--as is required")
			}
			_, h, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			actor, err := h.Directory.GetUserByEmail(cmd.Context(), as)
			if err != nil {
				return err
			}
			svc := verification.NewService(h.Directory, opts.logger())
			v, err := svc.Verify(cmd.Context(), *actor, args[0], comment)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified %s by %s at %s\nsignature %s\n",
				args[0], v.VerifierName, v.VerifiedAt.Format(time.RFC3339), v.SignatureHash)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "Email of the acting verifier")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Verification comment")
	return cmd
}
