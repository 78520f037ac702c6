package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeContacts(t *testing.T, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Contacts")
	require.NoError(t, err)

	all := append([][]interface{}{{"ID", "Name", "Phone", "Email", "Org", "Title", "City", "Country", "Address", "Lat", "Lon"}}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Contacts", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() {
		configPath, workbook = "", ""
		nearestLat, nearestLon, nearestLimit, nearestOut = 0, 0, 0, ""
		dedupeInput, dedupeOut = "", ""
		for _, cmd := range []*cobra.Command{nearestCmd, dedupeCmd} {
			cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		}
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func directoryWorkbook(t *testing.T) string {
	return writeContacts(t,
		[]interface{}{"nyc", "John Smith", "5551234567", "", "", "", "New York", "", "", "40.7128", "-74.0060"},
		[]interface{}{"la", "Maria Garcia", "3105550000", "", "", "", "Los Angeles", "", "", "34.0522", "-118.2437"},
		[]interface{}{"x", "Unplaced", "7000000000"},
	)
}

func TestNearestCommand(t *testing.T) {
	dir := directoryWorkbook(t)
	out := filepath.Join(t.TempDir(), "ranked.xlsx")

	stdout, err := execute(t, "nearest", "-w", dir, "--lat", "34", "--lon", "-118", "--limit", "5", "--out", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Maria Garcia")
	assert.Contains(t, stdout, "(310) 555-0000")
	assert.NotContains(t, stdout, "Unplaced")
	assert.Less(t, bytes.Index([]byte(stdout), []byte("Maria")), bytes.Index([]byte(stdout), []byte("John")))
	assert.FileExists(t, out)
}

func TestNearestCommand_InvalidOrigin(t *testing.T) {
	_, err := execute(t, "nearest", "-w", directoryWorkbook(t), "--lat", "100", "--lon", "0")
	assert.Error(t, err)
}

func TestDedupeCommand(t *testing.T) {
	dir := directoryWorkbook(t)
	incoming := writeContacts(t,
		[]interface{}{"", "Johnny S", "(555) 123-4567"},
		[]interface{}{"", "Somebody Else", "1231231234"},
	)
	report := filepath.Join(t.TempDir(), "report.xlsx")

	stdout, err := execute(t, "dedupe", "-w", dir, "--input", incoming, "--out", report)
	require.NoError(t, err)

	assert.Contains(t, stdout, "phone-exact of nyc")
	assert.Contains(t, stdout, "1 of 2 incoming contacts already exist")
	assert.FileExists(t, report)
}
