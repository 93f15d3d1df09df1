package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func knowledgeCMD() *cobra.Command {
	var urls []string
	var printPrompt bool
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Build the knowledge context once and report what was gathered",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				urls = cfg.WebsiteURLs
			}

			snap := buildKnowledge(cmd.Context(), cfg, urls).Current()
			if printPrompt {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), snap.Prompt)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"generation: %d\nsources: %d\nmanual chars: %d\nweb chars: %d\nprompt chars: %d\n",
				snap.Generation, len(snap.Sources),
				len([]rune(snap.StaticText)), len([]rune(snap.DynamicText)), len([]rune(snap.Prompt)))
			return err
		},
	}
	cmd.Flags().StringSliceVar(&urls, "url", nil, "web source to fetch (repeatable, defaults to WEBSITE_URLS)")
	cmd.Flags().BoolVar(&printPrompt, "prompt", false, "print the full prompt instead of a summary")
	return cmd
}
