package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"discdb/internal/contribution"
	"discdb/internal/disc"
	"discdb/internal/workflow"
)

const dateLayout = "2006-01-02"

func newContributionCommand(ctx *commandContext) *cobra.Command {
	contribCmd := &cobra.Command{
		Use:     "contribution",
		Aliases: []string{"c"},
		Short:   "Create, edit and review contributions",
	}

	contribCmd.AddCommand(newContributionCreateCommand(ctx))
	contribCmd.AddCommand(newContributionEditCommand(ctx))
	contribCmd.AddCommand(newContributionEditItemCommand(ctx))
	contribCmd.AddCommand(newContributionAddDiscCommand(ctx))
	contribCmd.AddCommand(newContributionUploadLogCommand(ctx))
	contribCmd.AddCommand(newContributionUploadImageCommand(ctx))
	contribCmd.AddCommand(newContributionRawLogCommand(ctx))
	contribCmd.AddCommand(newContributionHashCommand(ctx))
	contribCmd.AddCommand(newContributionValidateCommand(ctx))
	contribCmd.AddCommand(newContributionSubmitCommand(ctx))
	contribCmd.AddCommand(newContributionDecideCommand(ctx))
	contribCmd.AddCommand(newContributionImportCommand(ctx))
	contribCmd.AddCommand(newContributionShowCommand(ctx))
	contribCmd.AddCommand(newContributionListCommand(ctx))

	return contribCmd
}

func encoder(mgr *workflow.Manager) func(int64) string {
	return func(id int64) string {
		enc, err := mgr.Encode(id)
		if err != nil {
			return "#" + strconv.FormatInt(id, 10)
		}
		return enc
	}
}

// printView writes a contribution either as JSON or as the human summary.
func printView(cmd *cobra.Command, mgr *workflow.Manager, view *workflow.View, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, contributionView(view, encoder(mgr)))
	}
	renderContribution(cmd.OutOrStdout(), view, encoder(mgr))
	return nil
}

func parseIndex(value, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", what, value)
	}
	return n, nil
}

func newContributionCreateCommand(ctx *commandContext) *cobra.Command {
	var mediaType, provider, externalID, title string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new contribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.CreateContribution(c, workflow.CreateRequest{
					MediaType:        contribution.MediaType(strings.ToLower(strings.TrimSpace(mediaType))),
					ExternalProvider: provider,
					ExternalID:       externalID,
					Release:          contribution.Release{Title: title},
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, contributionView(view, encoder(mgr)))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created contribution %s\n", view.ExternalID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "media-type", "movie", "movie or series")
	cmd.Flags().StringVar(&provider, "provider", "", "External metadata provider, e.g. tmdb")
	cmd.Flags().StringVar(&externalID, "external-id", "", "Identifier at the external provider")
	cmd.Flags().StringVar(&title, "title", "", "Release title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newContributionEditCommand(ctx *commandContext) *cobra.Command {
	var title, slug, releaseDate, asin, upc, region, locale, mediaType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change release metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit workflow.ReleaseEdit
			flags := cmd.Flags()
			if flags.Changed("title") {
				edit.Title = &title
			}
			if flags.Changed("slug") {
				edit.Slug = &slug
			}
			if flags.Changed("release-date") {
				parsed, err := time.Parse(dateLayout, strings.TrimSpace(releaseDate))
				if err != nil {
					return fmt.Errorf("release date must be YYYY-MM-DD: %w", err)
				}
				edit.ReleaseDate = &parsed
			}
			if flags.Changed("asin") {
				edit.ASIN = &asin
			}
			if flags.Changed("upc") {
				edit.UPC = &upc
			}
			if flags.Changed("region") {
				edit.RegionCode = &region
			}
			if flags.Changed("locale") {
				edit.Locale = &locale
			}
			if flags.Changed("media-type") {
				media := contribution.MediaType(mediaType)
				edit.MediaType = &media
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.EditRelease(c, args[0], edit)
				if err != nil {
					return err
				}
				return printView(cmd, mgr, view, asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Release title")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (derived from the title when empty)")
	cmd.Flags().StringVar(&releaseDate, "release-date", "", "Release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asin, "asin", "", "Amazon ASIN")
	cmd.Flags().StringVar(&upc, "upc", "", "UPC barcode")
	cmd.Flags().StringVar(&region, "region", "", "Region code")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale, e.g. en-us")
	cmd.Flags().StringVar(&mediaType, "media-type", "", "movie or series")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newContributionEditItemCommand(ctx *commandContext) *cobra.Command {
	var name, itemType, description string
	var season, episode int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "edit-item <id> <disc> <item>",
		Short: "Change the type, name or episode numbers of a disc item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			discIndex, err := parseIndex(args[1], "disc")
			if err != nil {
				return err
			}
			itemIndex, err := parseIndex(args[2], "item")
			if err != nil {
				return err
			}
			var edit workflow.ItemEdit
			flags := cmd.Flags()
			if flags.Changed("name") {
				edit.Name = &name
			}
			if flags.Changed("type") {
				t := contribution.ItemType(itemType)
				edit.Type = &t
			}
			if flags.Changed("description") {
				edit.Description = &description
			}
			if flags.Changed("season") {
				edit.Season = &season
			}
			if flags.Changed("episode") {
				edit.Episode = &episode
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.EditItem(c, args[0], discIndex, itemIndex, edit)
				if err != nil {
					return err
				}
				return printView(cmd, mgr, view, asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Item name")
	cmd.Flags().StringVar(&itemType, "type", "", choiceList(contribution.ItemTypes()))
	cmd.Flags().StringVar(&description, "description", "", "Item description")
	cmd.Flags().IntVar(&season, "season", 0, "Season number")
	cmd.Flags().IntVar(&episode, "episode", 0, "Episode number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newContributionAddDiscCommand(ctx *commandContext) *cobra.Command {
	var name, format string

	cmd := &cobra.Command{
		Use:   "add-disc <id>",
		Short: "Add a disc to a contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.AddDisc(c, args[0], name, disc.Format(format))
				if err != nil {
					return err
				}
				last := view.Contribution.Discs[len(view.Contribution.Discs)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "Added disc %d (%s) to %s\n", last.Index, last.Name, view.ExternalID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Disc name (taken from the log when empty)")
	cmd.Flags().StringVar(&format, "format", "", choiceList(disc.Formats())+" (taken from the log when empty)")
	return cmd
}

func newContributionUploadLogCommand(ctx *commandContext) *cobra.Command {
	var force, asJSON bool

	cmd := &cobra.Command{
		Use:   "upload-log <id> <disc> <file|->",
		Short: "Upload a MakeMKV robot log for a disc",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			discIndex, err := parseIndex(args[1], "disc")
			if err != nil {
				return err
			}
			raw, err := readRawArg(cmd, args[2], workflow.DefaultMaxLogBytes)
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				res, err := mgr.UploadLog(c, workflow.UploadLogRequest{
					ExternalID: args[0],
					DiscIndex:  discIndex,
					Raw:        raw,
					Force:      force,
				})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, contributionView(&res.View, encoder(mgr)))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				d, _ := res.Contribution.DiscByIndex(discIndex)
				fmt.Fprintf(out, "Disc %d: %s, %d titles\n", discIndex, d.Name, len(d.Items))
				fmt.Fprintf(out, "Fingerprint: %s\n", res.Fingerprint)
				if res.Previous != "" {
					fmt.Fprintln(out, renderStatusLine("Fingerprint", statusWarn, "replaced "+res.Previous, colorize))
				}
				for _, w := range res.Warnings {
					fmt.Fprintln(out, renderStatusLine("Ripper", statusWarn, w, colorize))
				}
				for _, m := range res.Duplicates {
					line := fmt.Sprintf("also catalogued as disc %d of %s", m.DiscIndex, encoder(mgr)(m.ContributionID))
					fmt.Fprintln(out, renderStatusLine("Duplicate", statusWarn, line, colorize))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace a different fingerprint already recorded for the disc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newContributionUploadImageCommand(ctx *commandContext) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload-image <id> <front|back> <file>",
		Short: "Upload a cover image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readRawArg(cmd, args[2], maxImageBytes)
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.UploadImage(c, args[0], args[1], data, contentType)
				if err != nil {
					return err
				}
				key := view.Contribution.Release.FrontImageURL
				if strings.EqualFold(args[1], workflow.ImageBack) {
					key = view.Contribution.Release.BackImageURL
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s image as %s\n", strings.ToLower(args[1]), key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "Image type (sniffed when empty)")
	return cmd
}

func newContributionRawLogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "raw-log <id> <disc>",
		Short: "Print the stored raw log of a disc",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			discIndex, err := parseIndex(args[1], "disc")
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				data, err := mgr.ReadLog(c, args[0], discIndex)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}

func newContributionHashCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <id> <stream-dir>",
		Short: "Record the stream files of a ripped disc",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				res, err := mgr.RecordHashItems(c, args[0], args[1])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Disc hash: %s (%d files)\n", res.DiscHash, len(res.Files))
				rows := make([][]string, 0, len(res.Files))
				for _, f := range res.Files {
					rows = append(rows, []string{strconv.Itoa(f.Index), f.Name, strconv.FormatInt(f.Size, 10)})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "File", "Bytes"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))
				if len(res.Others) > 0 {
					fmt.Fprintf(out, "Same files recorded by: %s\n", strings.Join(res.Others, ", "))
				}
				return nil
			})
		},
	}
}

func newContributionValidateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <id>",
		Short: "Run the validation rules without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				res, err := mgr.Validate(c, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, validationView(res.ExternalID, res.Report))
				}
				renderReport(cmd.OutOrStdout(), res.Report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newContributionSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit a contribution for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.Submit(c, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Contribution %s is %s\n", view.ExternalID, view.Contribution.Status)
				return nil
			})
		},
	}
}

func newContributionDecideCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decide <id> <approve|request_changes|reject>",
		Short: "Record a review decision (requires --role administrator)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := contribution.ParseAction(args[1])
			if !ok {
				return fmt.Errorf("unknown decision %q", args[1])
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.Decide(c, args[0], action)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Contribution %s is %s\n", view.ExternalID, view.Contribution.Status)
				return nil
			})
		},
	}
}

func newContributionImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <id>",
		Short: "Mark an approved contribution as imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.Import(c, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Contribution %s is %s\n", view.ExternalID, view.Contribution.Status)
				return nil
			})
		},
	}
}

func newContributionShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a contribution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				view, err := mgr.Get(c, args[0])
				if err != nil {
					return err
				}
				return printView(cmd, mgr, view, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

type summaryJSON struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Status    string    `json:"status"`
	MediaType string    `json:"media_type"`
	Title     string    `json:"title,omitempty"`
	Discs     int       `json:"discs"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newContributionListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter []contribution.Status
			for _, s := range statuses {
				st, ok := contribution.ParseStatus(s)
				if !ok {
					return fmt.Errorf("unknown status %q", s)
				}
				filter = append(filter, st)
			}
			return ctx.withManager(cmd, func(c context.Context, mgr *workflow.Manager) error {
				items, err := ctx.store.ListContributions(c, filter...)
				if err != nil {
					return err
				}
				encode := encoder(mgr)
				if asJSON {
					out := make([]summaryJSON, 0, len(items))
					for _, it := range items {
						out = append(out, summaryJSON{
							ID:        encode(it.ID),
							Owner:     it.OwnerID,
							Status:    string(it.Status),
							MediaType: string(it.MediaType),
							Title:     it.Title,
							Discs:     it.Discs,
							UpdatedAt: it.UpdatedAt,
						})
					}
					return writeJSON(cmd, out)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No contributions")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{
						encode(it.ID),
						valueOrDash(it.Title),
						string(it.Status),
						string(it.MediaType),
						strconv.Itoa(it.Discs),
						it.OwnerID,
						it.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Status", "Media", "Discs", "Owner", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

// choiceList renders a closed value set for flag help, e.g. "a, b or c".
func choiceList[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	if len(parts) < 2 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}
