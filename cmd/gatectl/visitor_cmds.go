package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcommunity/portal/internal/api/dto"
	"github.com/smartcommunity/portal/internal/client"
	"github.com/smartcommunity/portal/internal/scan"
)

func newVisitorsCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visitors",
		Short: "Register expected visitors and list your passes",
	}
	cmd.AddCommand(newIssueCmd(app), newListCmd(app))
	return cmd
}

func newIssueCmd(app *cli) *cobra.Command {
	var form client.VisitorForm
	var out string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Create a single-use visitor pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			issued, err := app.client.IssueVisitor(cmd.Context(), form)
			if err != nil {
				return err
			}
			if out != "" {
				png, err := client.PassImage(issued)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, png, 0o644); err != nil {
					return fmt.Errorf("write pass image: %w", err)
				}
				app.printf("Pass image written to %s\n", out)
			}
			app.printf("Visitor %s expected on %s\n", issued.VisitorName, issued.ExpectedDate)
			app.printf("Code: %s\n", issued.QRCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.VisitorName, "name", "", "visitor name")
	cmd.Flags().StringVar(&form.VisitorPhone, "phone", "", "visitor phone")
	cmd.Flags().StringVar(&form.Purpose, "purpose", "", "purpose of the visit")
	cmd.Flags().StringVar(&form.ExpectedDate, "date", "", "expected date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&out, "out", "", "write the pass as a PNG to this file")
	return cmd
}

func newListCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the visitors you registered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := app.client.MyVisitors(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tVISITOR\tPHONE\tPURPOSE\tSTATUS\tENTRY")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ExpectedDate, r.VisitorName, r.VisitorPhone, r.Purpose, r.Status, entry(r.EntryTime))
			}
			return tw.Flush()
		},
	}
}

func newVerifyCmd(app *cli) *cobra.Command {
	var image string
	cmd := &cobra.Command{
		Use:   "verify [code]",
		Short: "Verify a visitor code typed in or read from a photo of the pass",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			switch {
			case image != "":
				text, err := scan.DecodeFile(image)
				if err != nil {
					return err
				}
				code = text
			case len(args) == 1:
				code = args[0]
			default:
				return errors.New("give a code or --image")
			}
			return app.verify(cmd.Context(), code)
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "PNG or JPEG photo of the pass")
	return cmd
}

func newScanCmd(app *cli) *cobra.Command {
	var images []string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read codes from a scanner on stdin (or image frames) and verify the first valid one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src scan.Source = scan.NewLineSource(app.in)
			if len(images) > 0 {
				src = scan.NewImageSource(images...)
			} else {
				app.printf("Waiting for scan...\n")
			}
			return scan.ForwardFirst(cmd.Context(), src, client.ValidateCode, app.verify,
				func(text string, err error) {
					app.printf("Skipped read %q: %s\n", text, client.Message(err))
				})
		},
	}
	cmd.Flags().StringSliceVar(&images, "images", nil, "image files to treat as camera frames, in order")
	return cmd
}

func newPendingCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show today's visitors not yet checked in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := app.client.PendingVisitors(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				app.printf("No pending visitors today.\n")
				return nil
			}
			tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVISITOR\tPHONE\tPURPOSE\tRESIDENT\tHOUSE\tRESIDENT PHONE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s-%s\t%s\n",
					r.ID, r.VisitorName, r.VisitorPhone, r.Purpose,
					r.Resident.FullName, r.Resident.Block, r.Resident.HouseNumber, r.Resident.Phone)
			}
			return tw.Flush()
		},
	}
}

func newCheckInCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <id>",
		Short: "Check in a roster visitor by record id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := app.client.CheckIn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.printEntry(record)
			return nil
		},
	}
}

func (a *cli) verify(ctx context.Context, code string) error {
	record, err := a.client.VerifyToken(ctx, code)
	if err != nil {
		return err
	}
	a.printEntry(record)
	return nil
}

func (a *cli) printEntry(r *dto.VisitorResponse) {
	by := ""
	if r.VerifiedBy != nil {
		by = *r.VerifiedBy
	}
	a.printf("Entry granted: %s (%s)\n", r.VisitorName, r.VisitorPhone)
	a.printf("Checked in at %s by %s\n", entry(r.EntryTime), by)
}

func entry(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
