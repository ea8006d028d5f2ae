package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/content-optimizer/internal/analyzer"
	"github.com/sells-group/content-optimizer/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score content for SEO, readability, and brand voice",
	Long:  "Commands for running the content analyzers over a file or stdin and printing structured reports.",
}

// -- analyze seo --

var analyzeSEOCmd = &cobra.Command{
	Use:   "seo [file]",
	Short: "Run the SEO analyzer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContentInput(cmd, args)
		if err != nil {
			return err
		}

		a, err := initAnalyzer()
		if err != nil {
			return err
		}

		report, err := a.AnalyzeSEO(cmd.Context(), in)
		if err != nil {
			return eris.Wrap(err, "analyze seo")
		}
		return printJSON(report)
	},
}

// -- analyze readability --

var analyzeReadabilityCmd = &cobra.Command{
	Use:   "readability [file]",
	Short: "Run the readability analyzer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContentInput(cmd, args)
		if err != nil {
			return err
		}
		return printJSON(analyzer.AnalyzeReadability(in.Content))
	},
}

// -- analyze brandvoice --

var analyzeBrandVoiceCmd = &cobra.Command{
	Use:   "brandvoice [file]",
	Short: "Run the brand-voice analyzer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContentInput(cmd, args)
		if err != nil {
			return err
		}

		a, err := initAnalyzer()
		if err != nil {
			return err
		}

		report, err := a.AnalyzeBrandVoice(cmd.Context(), in.Content)
		if err != nil {
			return eris.Wrap(err, "analyze brandvoice")
		}
		return printJSON(report)
	},
}

// -- analyze all --

var analyzeAllCmd = &cobra.Command{
	Use:   "all [file]",
	Short: "Run every analyzer and print a combined report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readContentInput(cmd, args)
		if err != nil {
			return err
		}

		a, err := initAnalyzer()
		if err != nil {
			return err
		}

		report, err := a.AnalyzeAll(cmd.Context(), in)
		if err != nil {
			return eris.Wrap(err, "analyze all")
		}
		return printJSON(report)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeSEOCmd, analyzeBrandVoiceCmd, analyzeAllCmd} {
		c.Flags().String("title", "", "page title to score")
		c.Flags().String("meta", "", "meta description to score")
		c.Flags().StringSlice("keywords", nil, "target keywords (comma-separated)")
	}
	analyzeCmd.AddCommand(analyzeSEOCmd)
	analyzeCmd.AddCommand(analyzeReadabilityCmd)
	analyzeCmd.AddCommand(analyzeBrandVoiceCmd)
	analyzeCmd.AddCommand(analyzeAllCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// readContentInput assembles a ContentInput from the positional file
// argument (stdin when absent) and the analyzer flags.
func readContentInput(cmd *cobra.Command, args []string) (model.ContentInput, error) {
	var content []byte
	var err error

	if len(args) == 1 {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return model.ContentInput{}, eris.Wrapf(err, "read content file %s", args[0])
		}
	} else {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return model.ContentInput{}, eris.Wrap(err, "read stdin")
		}
	}
	if len(content) == 0 {
		return model.ContentInput{}, eris.New("no content provided")
	}

	title, _ := cmd.Flags().GetString("title")
	meta, _ := cmd.Flags().GetString("meta")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")

	return model.ContentInput{
		Content:         string(content),
		Title:           title,
		MetaDescription: meta,
		TargetKeywords:  keywords,
	}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
