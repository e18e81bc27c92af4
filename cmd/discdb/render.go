package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"discdb/internal/contribution"
	"discdb/internal/validation"
	"discdb/internal/workflow"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 20

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusColor(status contribution.Status) statusKind {
	switch status {
	case contribution.StatusApproved, contribution.StatusImported:
		return statusOK
	case contribution.StatusChangesRequested:
		return statusWarn
	case contribution.StatusRejected:
		return statusError
	default:
		return statusInfo
	}
}

func renderContribution(out io.Writer, view *workflow.View, encode func(int64) string) {
	c := view.Contribution
	colorize := shouldColorize(out)
	status := string(c.Status)
	if colorize {
		status = statusKindColor(statusColor(c.Status)) + status + ansiReset
	}
	actions := make([]string, 0, len(view.Allowed))
	for _, a := range view.Allowed {
		actions = append(actions, string(a))
	}
	releaseDate := ""
	if !c.Release.ReleaseDate.IsZero() {
		releaseDate = c.Release.ReleaseDate.Format(dateLayout)
	}
	external := ""
	if c.ExternalProvider != "" || c.ExternalID != "" {
		external = c.ExternalProvider + "/" + c.ExternalID
	}
	fmt.Fprintln(out, renderFields([][2]string{
		{"ID", view.ExternalID},
		{"Status", status},
		{"Owner", c.OwnerID},
		{"Media type", string(c.MediaType)},
		{"External", valueOrDash(external)},
		{"Title", valueOrDash(c.Release.Title)},
		{"Slug", valueOrDash(c.Release.Slug)},
		{"Release date", valueOrDash(releaseDate)},
		{"ASIN / UPC", valueOrDash(c.Release.ASIN) + " / " + valueOrDash(c.Release.UPC)},
		{"Region / locale", valueOrDash(c.Release.RegionCode) + " / " + valueOrDash(c.Release.Locale)},
		{"Front image", yesNo(c.Release.FrontImageURL != "")},
		{"Back image", yesNo(c.Release.BackImageURL != "")},
		{"Stream files", strconv.Itoa(len(c.HashItems))},
		{"Next actions", valueOrDash(strings.Join(actions, ", "))},
	}))

	for _, d := range c.Discs {
		fmt.Fprintf(out, "\nDisc %d: %s [%s] fingerprint %s\n", d.Index, d.Name, valueOrDash(string(d.Format)), valueOrDash(d.Fingerprint))
		for _, m := range d.Duplicates {
			line := fmt.Sprintf("also catalogued as disc %d of %s", m.DiscIndex, encode(m.ContributionID))
			fmt.Fprintln(out, renderStatusLine("Duplicate", statusWarn, line, colorize))
		}
		if len(d.Items) == 0 {
			fmt.Fprintln(out, "  no log uploaded")
			continue
		}
		rows := make([][]string, 0, len(d.Items))
		for _, it := range d.Items {
			episode := ""
			if it.Season != nil && it.Episode != nil {
				episode = fmt.Sprintf("S%02dE%02d", *it.Season, *it.Episode)
			}
			rows = append(rows, []string{
				strconv.Itoa(it.Index),
				valueOrDash(it.Name),
				string(it.Type),
				formatDuration(it.Duration),
				strconv.Itoa(it.ChapterCount),
				valueOrDash(it.SegmentMap),
				valueOrDash(episode),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Name", "Type", "Duration", "Chapters", "Segments", "Episode"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		))
	}
}

func renderReport(out io.Writer, report validation.Report) {
	colorize := shouldColorize(out)
	for _, res := range report.Results {
		switch {
		case res.Passed():
			fmt.Fprintln(out, renderStatusLine(res.Rule, statusOK, "", colorize))
		case res.Blocking():
			fmt.Fprintln(out, renderStatusLine(res.Rule, statusError, res.Messages[0], colorize))
		default:
			fmt.Fprintln(out, renderStatusLine(res.Rule, statusWarn, res.Messages[0], colorize))
		}
		if len(res.Messages) > 1 {
			for _, msg := range res.Messages[1:] {
				fmt.Fprintf(out, "  %-*s         %s\n", statusLabelWidth, "", msg)
			}
		}
	}
	if report.Eligible() {
		if advisories := report.Advisories(); len(advisories) > 0 {
			fmt.Fprintf(out, "Ready to submit (%d advisory finding(s))\n", len(advisories))
			return
		}
		fmt.Fprintln(out, "Ready to submit")
	} else {
		fmt.Fprintln(out, "Not ready to submit")
	}
}
