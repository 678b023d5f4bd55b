package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garnizeh/eduverify/internal/skills"
)

func newSuggestCmd(opts *options) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "suggest-skills <description>",
		Short: "Suggest skills for a project description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, h, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			if provider != "" {
				cfg.Skills.Provider = provider
			}
			skills.SetLogger(opts.logger())
			extractor, closeFn, err := skills.New(cmd.Context(), cfg.Skills, h.Prompts)
			if err != nil {
				return err
			}
			defer closeFn()

			out := skills.NewSuggester(extractor, cfg.Skills.Timeout).Suggest(cmd.Context(), strings.Join(args, " "))
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string][]string{"skills": out})
			}
			for _, s := range out {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Override skills.provider (static, ollama, gemini, openai)")
	return cmd
}
