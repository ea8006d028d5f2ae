package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/content-optimizer/internal/experiment"
	"github.com/sells-group/content-optimizer/internal/model"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage A/B content experiments",
	Long:  "Commands for creating, inspecting, and completing A/B experiments over generated content variants.",
}

// -- experiment create --

var experimentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an experiment with generated variants",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		svc, st, err := initExperimentService(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		contentFile, _ := cmd.Flags().GetString("content-file")
		contentType, _ := cmd.Flags().GetString("content-type")
		platform, _ := cmd.Flags().GetString("platform")
		testType, _ := cmd.Flags().GetString("test-type")
		variants, _ := cmd.Flags().GetInt("variants")

		content, err := os.ReadFile(contentFile)
		if err != nil {
			return eris.Wrapf(err, "read content file %s", contentFile)
		}

		exp, err := svc.Create(ctx, experiment.CreateRequest{
			Name:         name,
			Description:  description,
			Content:      string(content),
			ContentType:  model.ContentType(contentType),
			Platform:     platform,
			TestType:     model.TestType(testType),
			VariantCount: variants,
		})
		if err != nil {
			return eris.Wrap(err, "experiment create")
		}
		return printJSON(exp)
	},
}

// -- experiment list --

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		contentType, _ := cmd.Flags().GetString("content-type")
		platform, _ := cmd.Flags().GetString("platform")

		experiments, err := st.List(ctx, experiment.Filter{
			Status:      model.ExperimentStatus(status),
			ContentType: model.ContentType(contentType),
			Platform:    platform,
		})
		if err != nil {
			return eris.Wrap(err, "experiment list")
		}

		if len(experiments) == 0 {
			fmt.Fprintln(os.Stderr, "No experiments found.")
			return nil
		}

		formatExperimentList(os.Stdout, experiments)
		return nil
	},
}

// -- experiment get --

var experimentGetCmd = &cobra.Command{
	Use:   "get <experiment-id>",
	Short: "Show full details of an experiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		exp, err := st.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "experiment get")
		}
		if exp == nil {
			return eris.Errorf("experiment not found: %s", args[0])
		}
		return printJSON(exp)
	},
}

// -- experiment update --

var experimentUpdateCmd = &cobra.Command{
	Use:   "update <experiment-id>",
	Short: "Update experiment fields or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var upd experiment.Update
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			upd.Name = &name
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			upd.Description = &description
		}
		if cmd.Flags().Changed("platform") {
			platform, _ := cmd.Flags().GetString("platform")
			upd.Platform = &platform
		}
		if cmd.Flags().Changed("status") {
			status, _ := cmd.Flags().GetString("status")
			s := model.ExperimentStatus(status)
			upd.Status = &s
		}

		exp, err := st.Update(ctx, args[0], upd)
		if err != nil {
			return eris.Wrap(err, "experiment update")
		}
		return printJSON(exp)
	},
}

// -- experiment delete --

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <experiment-id>",
	Short: "Delete an experiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if err := st.Delete(ctx, args[0]); err != nil {
			return eris.Wrap(err, "experiment delete")
		}
		fmt.Fprintf(os.Stderr, "Deleted experiment %s\n", args[0])
		return nil
	},
}

// -- experiment record --

var experimentRecordCmd = &cobra.Command{
	Use:   "record <experiment-id>",
	Short: "Record traffic counters for a variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, st, err := initExperimentService(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		variant, _ := cmd.Flags().GetString("variant")
		impressions, _ := cmd.Flags().GetInt("impressions")
		clicks, _ := cmd.Flags().GetInt("clicks")
		conversions, _ := cmd.Flags().GetInt("conversions")

		exp, err := svc.RecordResult(ctx, args[0], experiment.ResultInput{
			VariantID:   variant,
			Impressions: impressions,
			Clicks:      clicks,
			Conversions: conversions,
		})
		if err != nil {
			return eris.Wrap(err, "experiment record")
		}
		return printJSON(exp.Results)
	},
}

// -- experiment results --

var experimentResultsCmd = &cobra.Command{
	Use:   "results <experiment-id>",
	Short: "Analyze recorded results and print a verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		exp, err := st.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "experiment results")
		}
		if exp == nil {
			return eris.Errorf("experiment not found: %s", args[0])
		}

		return printJSON(experiment.AnalyzeResults(exp))
	},
}

// -- experiment complete --

var experimentCompleteCmd = &cobra.Command{
	Use:   "complete <experiment-id>",
	Short: "Complete a running experiment and record the verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, st, err := initExperimentService(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		exp, verdict, err := svc.Complete(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "experiment complete")
		}
		return printJSON(map[string]any{
			"experiment": exp,
			"verdict":    verdict,
		})
	},
}

func init() {
	experimentCreateCmd.Flags().String("name", "", "experiment name")
	experimentCreateCmd.Flags().String("description", "", "experiment description")
	experimentCreateCmd.Flags().String("content-file", "", "path to the original content")
	experimentCreateCmd.Flags().String("content-type", "blog", "content type (blog, social, newsletter)")
	experimentCreateCmd.Flags().String("platform", "", "distribution platform")
	experimentCreateCmd.Flags().String("test-type", "title", "test type (title, description, cta, full_content)")
	experimentCreateCmd.Flags().Int("variants", 2, "number of generated variants [2,10]")
	_ = experimentCreateCmd.MarkFlagRequired("name")
	_ = experimentCreateCmd.MarkFlagRequired("content-file")

	experimentListCmd.Flags().String("status", "", "filter by status (draft, running, completed, paused)")
	experimentListCmd.Flags().String("content-type", "", "filter by content type")
	experimentListCmd.Flags().String("platform", "", "filter by platform")

	experimentUpdateCmd.Flags().String("name", "", "new name")
	experimentUpdateCmd.Flags().String("description", "", "new description")
	experimentUpdateCmd.Flags().String("platform", "", "new platform")
	experimentUpdateCmd.Flags().String("status", "", "new status (draft, running, completed, paused)")

	experimentRecordCmd.Flags().String("variant", "", "variant id (control, variant_1, ...)")
	experimentRecordCmd.Flags().Int("impressions", 0, "impression count")
	experimentRecordCmd.Flags().Int("clicks", 0, "click count")
	experimentRecordCmd.Flags().Int("conversions", 0, "conversion count")
	_ = experimentRecordCmd.MarkFlagRequired("variant")

	experimentCmd.AddCommand(experimentCreateCmd)
	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentGetCmd)
	experimentCmd.AddCommand(experimentUpdateCmd)
	experimentCmd.AddCommand(experimentDeleteCmd)
	experimentCmd.AddCommand(experimentRecordCmd)
	experimentCmd.AddCommand(experimentResultsCmd)
	experimentCmd.AddCommand(experimentCompleteCmd)
	rootCmd.AddCommand(experimentCmd)
}

// formatExperimentList writes a tabular list of experiments to w.
func formatExperimentList(out io.Writer, experiments []model.Experiment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tTEST\tSTATUS\tVARIANTS\tCONFIDENCE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t----\t------\t--------\t----------\t-------")

	for _, e := range experiments {
		name := e.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.0f%%\t%s\n",
			truncateID(e.ID),
			name,
			e.ContentType,
			e.TestType,
			e.Status,
			len(e.Variants),
			e.ConfidenceLevel,
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
