package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"contact-radar/internal/models"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "directory.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var contactHeader = []interface{}{
	"ID", "Name", "Phone", "Email", "Organization", "Job Title", "City", "Country",
	"Address", "Latitude", "Longitude", "Favorite", "Tags", "Source", "Notes",
}

func TestLoadWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Contacts": {
			contactHeader,
			{"c1", "John Smith", "(555) 123-4567", "john@example.com", "o1", "CTO", "New York", "USA", "", "40,7128", "-74.0060", "yes", "vip", "Voice", "met at expo"},
			{"c2", "No Coords", "5550001111", "", "", "", "Nowhere", "", "", "", ""},
			{"", "Half Coords", "5550002222", "", "", "", "", "", "", "12.5", "abc"},
			{"", "", ""},
		},
		"Organizations": {
			{"ID", "Name", "Industry", "Website", "Description"},
			{"o1", "Acme", "tech", "https://acme.test", "Widgets"},
			{"", "skipped"},
		},
	})

	wb, err := LoadWorkbook(path, "Contacts", "Organizations")
	require.NoError(t, err)
	contacts, orgs := wb.Contacts, wb.Organizations
	require.Len(t, contacts, 3)
	assert.Empty(t, wb.RejectedLocations)

	john := contacts[0]
	assert.Equal(t, "c1", john.ID)
	assert.Equal(t, "o1", john.OrganizationID)
	assert.True(t, john.Favorite)
	assert.Equal(t, models.SourceVoice, john.Source)
	require.NotNil(t, john.Loc)
	assert.InDelta(t, 40.7128, john.Loc.Lat, 1e-9)
	assert.InDelta(t, -74.006, john.Loc.Lon, 1e-9)
	assert.Equal(t, 2, john.RowIndex)

	assert.Nil(t, contacts[1].Loc, "blank coordinates must stay absent, not 0,0")
	assert.False(t, contacts[1].Favorite)
	assert.Equal(t, models.SourceManual, contacts[1].Source)

	assert.Nil(t, contacts[2].Loc)
	assert.NotEmpty(t, contacts[2].ID, "missing ids are generated")

	require.Len(t, orgs, 1)
	assert.Equal(t, models.Organization{ID: "o1", Name: "Acme", Industry: "tech", Website: "https://acme.test", Description: "Widgets"}, orgs[0])
}

func TestLoadWorkbook_WithoutOrganizationsSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Contacts": {contactHeader, {"c1", "Solo", "1"}},
	})

	wb, err := LoadWorkbook(path, "Contacts", "Organizations")
	require.NoError(t, err)
	assert.Len(t, wb.Contacts, 1)
	assert.Empty(t, wb.Organizations)
}

func TestLoadWorkbook_OutOfRangeLocations(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Contacts": {
			contactHeader,
			{"typo", "Typo", "2", "", "", "", "", "", "", "407", "-74"},
			{"nan", "Not A Number", "3", "", "", "", "", "", "", "NaN", "10"},
			{"ok", "Fine", "4", "", "", "", "", "", "", "-90", "180"},
		},
	})

	wb, err := LoadWorkbook(path, "Contacts", "Organizations")
	require.NoError(t, err)
	require.Len(t, wb.Contacts, 3)
	assert.Nil(t, wb.Contacts[0].Loc)
	assert.Nil(t, wb.Contacts[1].Loc)
	require.NotNil(t, wb.Contacts[2].Loc, "boundary values are valid")
	assert.Equal(t, models.Coordinate{Lat: -90, Lon: 180}, *wb.Contacts[2].Loc)
	assert.Equal(t, []int{2, 3}, wb.RejectedLocations)
}

func TestLoadWorkbook_MissingContactsSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Other": {{"x"}},
	})

	_, err := LoadWorkbook(path, "Contacts", "Organizations")
	assert.Error(t, err)
}

func TestLoadWorkbook_MissingFile(t *testing.T) {
	_, err := LoadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), "Contacts", "Organizations")
	assert.Error(t, err)
}

func TestWriteRanked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranked.xlsx")
	ranked := []models.RankedContact{
		{Contact: models.Contact{ID: "a", Name: "Alpha", Phone: "1", City: "X"}, DistanceKm: 1.5, Rank: 0},
		{Contact: models.Contact{ID: "b", Name: "Beta", Phone: "2", City: "Y"}, DistanceKm: 12.3, Rank: 1},
	}
	require.NoError(t, WriteRanked(path, ranked, RankedSheet))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RankedSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "a", "Alpha", "1", "X", "1.5"}, rows[1])
	assert.Equal(t, "12.3", rows[2][5])
	assert.Equal(t, []string{RankedSheet}, f.GetSheetList())
}

func TestWriteDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dupes.xlsx")
	match := models.Contact{ID: "m1", Name: "John Smith", Phone: "5551234567"}
	data := []DuplicateRow{
		{Row: 2, Incoming: models.Contact{Name: "John", Phone: "(555) 123-4567"}, Verdict: models.DuplicateVerdict{Match: &match, Reason: models.ReasonPhoneExact}},
		{Row: 3, Incoming: models.Contact{Name: "Fresh", Phone: "1"}},
	}
	require.NoError(t, WriteDuplicates(path, data, "Duplicates"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Duplicates")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2", "John", "(555) 123-4567", "duplicate", "phone-exact", "m1", "John Smith", "5551234567"}, rows[1])
	assert.Equal(t, "new", rows[2][3])
}
