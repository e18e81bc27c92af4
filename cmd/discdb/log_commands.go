package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"discdb/internal/disc"
	"discdb/internal/disc/fingerprint"
	"discdb/internal/workflow"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect ripper logs without touching the catalog",
	}
	logCmd.AddCommand(newLogParseCommand())
	logCmd.AddCommand(newLogFingerprintCommand())
	return logCmd
}

// readLogArg reads a log file, or stdin for "-", and normalizes it.
func readLogArg(cmd *cobra.Command, path string) (string, error) {
	raw, err := readRawArg(cmd, path, workflow.DefaultMaxLogBytes)
	if err != nil {
		return "", err
	}
	return disc.NormalizeLog(raw)
}

func newLogParseCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "parse <file|->",
		Short:       "Parse a MakeMKV robot log and list its titles",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readLogArg(cmd, args[0])
			if err != nil {
				return err
			}
			info, err := disc.ParseLog(text)
			if err != nil {
				return err
			}
			fp := fingerprint.Compute(info)
			if asJSON {
				return writeJSON(cmd, discInfoJSON(info, fp))
			}
			renderDiscInfo(cmd.OutOrStdout(), info, fp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newLogFingerprintCommand() *cobra.Command {
	var granularity time.Duration

	cmd := &cobra.Command{
		Use:         "fingerprint <file|->",
		Short:       "Print the content fingerprint of a ripper log",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readLogArg(cmd, args[0])
			if err != nil {
				return err
			}
			info, err := disc.ParseLog(text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fingerprint.NewHasher(granularity).Compute(info))
			return nil
		},
	}
	cmd.Flags().DurationVar(&granularity, "granularity", fingerprint.DefaultGranularity, "Duration rounding step")
	return cmd
}

func renderDiscInfo(out io.Writer, info *disc.DiscInfo, fp string) {
	fmt.Fprintf(out, "Name:        %s\n", valueOrDash(info.Name))
	fmt.Fprintf(out, "Format:      %s\n", valueOrDash(string(info.Format)))
	fmt.Fprintf(out, "Fingerprint: %s\n", fp)
	fmt.Fprintf(out, "Lines:       %d (%d records, %d skipped)\n", info.Stats.Lines, info.Stats.Records, info.Stats.Skipped)
	if info.DeclaredTitles > 0 && info.DeclaredTitles != len(info.Titles) {
		fmt.Fprintf(out, "Titles:      %d parsed, %d declared\n", len(info.Titles), info.DeclaredTitles)
	}
	for _, w := range info.Warnings {
		fmt.Fprintf(out, "Warning:     %s\n", w)
	}

	rows := make([][]string, 0, len(info.Titles))
	for _, t := range info.Titles {
		audio := make([]string, 0)
		for _, track := range t.AudioTracks() {
			audio = append(audio, track.Label())
		}
		rows = append(rows, []string{
			strconv.Itoa(t.Index),
			valueOrDash(t.Name),
			formatDuration(t.Duration),
			strconv.Itoa(t.ChapterCount),
			valueOrDash(t.Segments.String()),
			valueOrDash(t.Source),
			valueOrDash(strings.Join(audio, "; ")),
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"#", "Name", "Duration", "Chapters", "Segments", "Source", "Audio"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintln(out)
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}
