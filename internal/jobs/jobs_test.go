package jobs

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"contact-radar/internal/metrics"
	"contact-radar/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticSource []models.Contact

func (s staticSource) Contacts() []models.Contact { return s }

func directory() staticSource {
	return staticSource{
		{ID: "nyc", Name: "John Smith", Phone: "(555) 123-4567", Loc: &models.Coordinate{Lat: 40.7128, Lon: -74.0060}},
		{ID: "la", Name: "Maria Garcia", Phone: "3105550000", Loc: &models.Coordinate{Lat: 34.0522, Lon: -118.2437}},
		{ID: "nowhere", Name: "Pat Quinn", Phone: "7000000000"},
	}
}

func writeIncoming(t *testing.T, rows [][]interface{}) string {
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
	path := filepath.Join(t.TempDir(), "incoming.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func hasLog(logs []string, fragment string) bool {
	for _, l := range logs {
		if strings.Contains(l, fragment) {
			return true
		}
	}
	return false
}

func newRunner(t *testing.T, m *metrics.Metrics) (*Runner, *Store) {
	store := NewStore()
	return NewRunner(store, directory(), "Contacts", t.TempDir(), zap.NewNop(), m), store
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDedupe, m)

	m, err = ParseMode("nearest")
	require.NoError(t, err)
	assert.Equal(t, ModeNearest, m)

	_, err = ParseMode("radius")
	assert.Error(t, err)
}

func TestRunner_Dedupe(t *testing.T) {
	m := metrics.New()
	runner, store := newRunner(t, m)
	input := writeIncoming(t, [][]interface{}{
		{"", "J. Smith", "555.123.4567"},
		{"", "maria", ""},
		{"", "Brand New", "9999999999"},
	})

	job := runner.Start(ModeDedupe, input)
	runner.Wait()

	assert.Same(t, job, store.Get(job.ID))
	snap := job.Snapshot(true)
	require.Equal(t, StatusDone, snap.Status, snap.Error)
	assert.Equal(t, 100, snap.Progress)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 3, snap.Result.Rows)
	assert.Equal(t, 2, snap.Result.Duplicates)
	assert.Equal(t, "incoming_dedupe.xlsx", snap.Result.Filename)
	assert.NotEmpty(t, snap.Logs)

	rows := readSheet(t, job.Result().Output, DuplicatesSheet)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"2", "J. Smith", "555.123.4567", "duplicate", "phone-exact", "nyc", "John Smith", "(555) 123-4567"}, rows[1])
	assert.Equal(t, "name-similar", rows[2][4])
	assert.Equal(t, "la", rows[2][5])
	assert.Equal(t, "new", rows[3][3])
}

func TestRunner_Nearest(t *testing.T) {
	runner, _ := newRunner(t, nil)
	input := writeIncoming(t, [][]interface{}{
		{"", "Near LA", "1", "", "", "", "", "", "", "34.05", "-118.25"},
		{"", "No Location", "2"},
		{"", "Off Map", "3", "", "", "", "", "", "", "120", "0"},
	})

	job := runner.Start(ModeNearest, input)
	runner.Wait()

	snap := job.Snapshot(true)
	require.Equal(t, StatusDone, snap.Status, snap.Error)
	assert.Equal(t, NearestSheet, snap.Result.Sheet)
	assert.True(t, hasLog(snap.Logs, "1 rows skipped"), "logs: %v", snap.Logs)

	rows := readSheet(t, job.Result().Output, NearestSheet)
	require.Len(t, rows, 4)
	assert.Equal(t, "la", rows[1][4])
	assert.Equal(t, "0.6", rows[1][8])
	assert.Len(t, rows[2], 2, "unlocated rows carry no nearest contact")
	assert.Equal(t, "Off Map", rows[3][1])
	assert.Len(t, rows[3], 2, "out of range locations are dropped at read time")
}

func TestRunner_BadWorkbook(t *testing.T) {
	runner, _ := newRunner(t, nil)

	job := runner.Start(ModeDedupe, filepath.Join(t.TempDir(), "missing.xlsx"))
	runner.Wait()

	snap := job.Snapshot(false)
	assert.Equal(t, StatusError, snap.Status)
	assert.Contains(t, snap.Error, "could not open workbook")
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Logs)
}

// gatedSource holds the job at its directory read until release is closed.
type gatedSource struct {
	release chan struct{}
}

func (g gatedSource) Contacts() []models.Contact {
	<-g.release
	return directory()
}

type panickingSource struct{}

func (panickingSource) Contacts() []models.Contact {
	panic("directory unavailable")
}

func TestRunner_CancelRunningJob(t *testing.T) {
	m := metrics.New()
	src := gatedSource{release: make(chan struct{})}
	runner := NewRunner(NewStore(), src, "Contacts", t.TempDir(), zap.NewNop(), m)
	input := writeIncoming(t, [][]interface{}{
		{"", "J. Smith", "555.123.4567"},
		{"", "Brand New", "9999999999"},
	})

	job := runner.Start(ModeDedupe, input)
	job.Cancel()
	close(src.release)
	runner.Wait()

	snap := job.Snapshot(true)
	assert.Equal(t, StatusCanceled, snap.Status)
	assert.Equal(t, "canceled", snap.Error)
	assert.Nil(t, snap.Result)
	assert.True(t, hasLog(snap.Logs, "Cancel requested"), "logs: %v", snap.Logs)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Jobs.WithLabelValues("dedupe", "canceled")))
}

func TestRunner_PanicBecomesError(t *testing.T) {
	runner := NewRunner(NewStore(), panickingSource{}, "Contacts", t.TempDir(), zap.NewNop(), nil)
	input := writeIncoming(t, [][]interface{}{{"", "Anyone", "1"}})

	job := runner.Start(ModeNearest, input)
	runner.Wait()

	snap := job.Snapshot(false)
	assert.Equal(t, StatusError, snap.Status)
	assert.Contains(t, snap.Error, "directory unavailable")
	assert.Nil(t, snap.Result)
}

func TestJob_CancelAfterFinishIsNoop(t *testing.T) {
	runner, _ := newRunner(t, nil)
	job := runner.Start(ModeDedupe, writeIncoming(t, nil))
	runner.Wait()

	job.Cancel()
	assert.Equal(t, StatusDone, job.Status())
}

func TestJob_SetProgress(t *testing.T) {
	j := newJob(ModeDedupe)
	j.SetProgress(1, 4, "")
	j.SetProgress(2, 4, "halfway")
	j.SetProgress(1, 0, "")

	snap := j.Snapshot(true)
	assert.Equal(t, 50, snap.Progress)
	require.Len(t, snap.Logs, 1)
	assert.Contains(t, snap.Logs[0], "halfway")
}

func TestStore_GetUnknown(t *testing.T) {
	assert.Nil(t, NewStore().Get("nope"))
}
