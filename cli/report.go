package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"funnelscope/api/charts"
	"funnelscope/api/config"
	"funnelscope/api/export"
	"funnelscope/api/funnel"
	"funnelscope/api/ingest"
)

func newReportCmd() *cobra.Command {
	var (
		jobPath string
		job     config.Job
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build funnel, cohort and channel reports from CSV exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobPath != "" {
				loaded, err := config.LoadJob(jobPath)
				if err != nil {
					return err
				}
				job = loaded
			} else {
				job.Normalize()
				if err := job.Validate(); err != nil {
					return err
				}
			}
			return runReport(job, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&jobPath, "job", "", "YAML job file; other input and output flags are ignored when set")
	cmd.Flags().StringVar(&job.Inputs.Events, "events", "", "User events CSV")
	cmd.Flags().StringVar(&job.Inputs.Demographics, "demographics", "", "User demographics CSV")
	cmd.Flags().StringVar(&job.Inputs.Campaigns, "campaigns", "", "Campaign CSV")
	cmd.Flags().StringVar(&job.Output.Dir, "out", "processed", "Output directory")
	cmd.Flags().StringSliceVar(&job.Output.Formats, "format", []string{config.FormatJSON}, "Export formats (json, csv, xlsx)")
	cmd.Flags().BoolVar(&job.Charts, "charts", false, "Include QuickChart URLs in the manifest")

	return cmd
}

func runReport(job config.Job, out io.Writer) error {
	var (
		in  funnel.Input
		err error
	)
	if in.Events, err = ingest.ReadEventsFile(job.Inputs.Events); err != nil {
		return err
	}
	if job.Inputs.Demographics != "" {
		if in.Demographics, err = ingest.ReadDemographicsFile(job.Inputs.Demographics); err != nil {
			return err
		}
	}
	if job.Inputs.Campaigns != "" {
		if in.Campaigns, err = ingest.ReadCampaignsFile(job.Inputs.Campaigns); err != nil {
			return err
		}
	}

	r := funnel.BuildReport(in)
	log.WithFields(log.Fields{
		"rows":                 r.Stats.Load.Rows,
		"dropped":              r.Stats.DroppedRows,
		"duplicates":           r.Stats.DuplicateRows,
		"users":                r.Stats.Users,
		"missing_demographics": r.Stats.MissingDemographics,
	}).Info("Report built.")
	if r.Stats.MissingDemographics > 0 && len(in.Demographics) > 0 {
		log.WithField("users", r.Stats.MissingDemographics).Warn("Users without demographics.")
	}

	var urls *charts.URLs
	if job.Charts {
		u, err := charts.Render(r)
		if err != nil {
			return err
		}
		urls = &u
	}

	m, err := export.Write(job.Output.Dir, r, job.Output.Formats, urls)
	if err != nil {
		return err
	}

	return printSummary(out, r, m, job.Output.Dir)
}

func printSummary(out io.Writer, r *funnel.Report, m *export.Manifest, dir string) error {
	s := r.Stats
	fmt.Fprintf(out, "Run %s\n", m.RunID)
	fmt.Fprintf(out, "Events: %d loaded, %d dropped, %d duplicates, %d users\n",
		s.Load.Rows, s.DroppedRows, s.DuplicateRows, s.Users)
	if !s.Load.FirstEvent.IsZero() {
		fmt.Fprintf(out, "Range: %s to %s\n",
			s.Load.FirstEvent.Format("2006-01-02"), s.Load.LastEvent.Format("2006-01-02"))
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tEVENT\tUSERS\tSTEP %\tOVERALL %\tDROP-OFF %")
	for _, step := range r.Funnel {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f\t%.1f\t%.1f\n",
			step.Step, step.EventLabel, step.UsersAtStep, step.StepConversionRate, step.OverallConversionRate, step.DropOffRate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nWrote %d files to %s\n", len(m.Files), dir)
	return nil
}
