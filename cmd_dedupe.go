package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"contact-radar/internal/duplicate"
	"contact-radar/internal/excel"
	"contact-radar/internal/jobs"
)

var (
	dedupeInput string
	dedupeOut   string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Check every contact in an incoming workbook against the directory",
	Long: `Reads the Contacts sheet of --input and reports, per row, whether it duplicates a
directory contact. Phone digits are compared first; names are compared only when
no phone matches.`,
	Example: `  contact-radar dedupe -w contacts.xlsx --input leads.xlsx --out leads_report.xlsx`,
	RunE:    runDedupe,
}

func init() {
	dedupeCmd.Flags().StringVarP(&dedupeInput, "input", "i", "", "workbook with incoming contacts")
	dedupeCmd.Flags().StringVarP(&dedupeOut, "out", "o", "", "report workbook to write")
	_ = dedupeCmd.MarkFlagRequired("input")
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	dir, err := loadDirectory(cfg, logger)
	if err != nil {
		return err
	}
	wb, err := excel.LoadWorkbook(dedupeInput, cfg.Directory.ContactsSheet, cfg.Directory.OrganizationsSheet)
	if err != nil {
		return err
	}
	incoming := wb.Contacts

	existing := dir.Contacts()
	rows := make([]excel.DuplicateRow, 0, len(incoming))
	dupes := 0
	for _, in := range incoming {
		v := duplicate.Find(in.Phone, in.Name, existing)
		rows = append(rows, excel.DuplicateRow{Row: in.RowIndex, Incoming: in, Verdict: v})
		if !v.Found() {
			continue
		}
		dupes++
		fmt.Fprintf(cmd.OutOrStdout(), "row %d %q: %s of %s (%s)\n", in.RowIndex, in.Name, v.Reason, v.Match.ID, v.Match.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d incoming contacts already exist\n", dupes, len(incoming))

	if dedupeOut != "" {
		if err := excel.WriteDuplicates(dedupeOut, rows, jobs.DuplicatesSheet); err != nil {
			return fmt.Errorf("write %s: %w", dedupeOut, err)
		}
	}
	return nil
}
