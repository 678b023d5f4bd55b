package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/garnizeh/eduverify/internal/search"
)

func newSearchCmd(opts *options) *cobra.Command {
	var (
		skills  []string
		filters search.Filters
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search candidate profiles",
		Example: `  eduverifyctl search --skills IoT --has-video
  eduverifyctl search malaria --verified-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, h, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			engine := search.New(h.Directory, opts.logger())
			profiles, err := engine.Search(cmd.Context(), strings.Join(args, " "), skills, filters)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), profiles)
			}
			return printProfiles(cmd.OutOrStdout(), profiles)
		},
	}
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Required skills (comma separated or repeated)")
	cmd.Flags().BoolVar(&filters.VerifiedOnly, "verified-only", false, "Only profiles with a verified project")
	cmd.Flags().BoolVar(&filters.HasVideo, "has-video", false, "Only profiles with a video artifact")
	cmd.Flags().BoolVar(&filters.HasDataset, "has-dataset", false, "Only profiles with a dataset artifact")
	cmd.Flags().IntVar(&filters.MinCollaborators, "min-collaborators", 0, "Minimum collaborators on some project")
	return cmd
}
