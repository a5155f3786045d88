package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agentic_ad_copy/generator"
	"agentic_ad_copy/report"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		in    generator.CampaignInput
		out   string
		plain bool
		width int
	)
	c := &cobra.Command{
		Use:   "generate",
		Short: "Generate ad copy for all platforms from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.ValidateOptions(); err != nil {
				return err
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			llm, err := root.buildLLM(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			slog.Info("Generating ad copies", "product", in.ProductName, "platforms", len(generator.Platforms()))
			run, err := generator.Generate(cmd.Context(), llm, in)
			if err != nil {
				return err
			}
			rep, err := report.Build(run)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if plain {
				fmt.Fprint(w, rep.Markdown())
			} else {
				styled, err := report.RenderTerminal(rep, width)
				if err != nil {
					return err
				}
				fmt.Fprint(w, styled)
			}

			if out != "" {
				if err := os.WriteFile(out, []byte(rep.Export), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				slog.Info("Ads written", "path", out)
			}
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&in.ProductName, "product", "", "product name")
	f.StringVar(&in.ProductDescription, "description", "", "product description")
	f.StringVar(&in.Problem, "problem", "", "problem the product solves")
	f.StringVar(&in.USP, "usp", "", "unique selling point (optional)")
	f.StringVar(&in.AgeGroup, "age", generator.AgeGroups[0], fmt.Sprintf("age group %v", generator.AgeGroups))
	f.StringVar(&in.Gender, "gender", generator.Genders[0], fmt.Sprintf("target gender %v", generator.Genders))
	f.StringVar(&in.Goal, "goal", generator.Goals[0], fmt.Sprintf("campaign goal %v", generator.Goals))
	f.StringVar(&in.Tone, "tone", generator.Tones[0], fmt.Sprintf("tone %v", generator.Tones))
	f.StringVarP(&out, "out", "o", "", "write the combined export to this file (e.g. "+report.ExportFilename+")")
	f.BoolVar(&plain, "plain", false, "print markdown without terminal styling")
	f.IntVar(&width, "width", 100, "word wrap width for styled output")
	_ = c.MarkFlagRequired("product")
	_ = c.MarkFlagRequired("description")
	_ = c.MarkFlagRequired("problem")
	return c
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the accepted values for the select fields",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "age groups: %q\n", generator.AgeGroups)
			fmt.Fprintf(w, "genders:    %q\n", generator.Genders)
			fmt.Fprintf(w, "goals:      %q\n", generator.Goals)
			fmt.Fprintf(w, "tones:      %q\n", generator.Tones)
			fmt.Fprintf(w, "platforms:  %q\n", generator.Platforms())
		},
	}
}
