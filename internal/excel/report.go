package excel

import (
	"github.com/xuri/excelize/v2"

	"contact-radar/internal/models"
)

// DuplicateRow is one incoming record checked against the directory.
type DuplicateRow struct {
	Row      int
	Incoming models.Contact
	Verdict  models.DuplicateVerdict
}

// NearestRow pairs an incoming record with its closest directory contact, if any.
type NearestRow struct {
	Row      int
	Incoming models.Contact
	Nearest  *models.RankedContact
}

// RankedSheet holds the ranked list written by WriteRanked.
const RankedSheet = "Ranked"

func WriteRanked(path string, data []models.RankedContact, sheetName string) error {
	headers := []interface{}{"Rank", "ID", "Name", "Phone", "City", "Distance (km)"}
	return writeSheet(path, sheetName, headers, len(data), func(i int) []interface{} {
		r := data[i]
		return []interface{}{r.Rank + 1, r.ID, r.Name, r.Phone, r.City, r.DistanceKm}
	})
}

func WriteDuplicates(path string, data []DuplicateRow, sheetName string) error {
	headers := []interface{}{
		"Row", "Incoming Name", "Incoming Phone",
		"Verdict", "Reason", "Matched ID", "Matched Name", "Matched Phone",
	}
	return writeSheet(path, sheetName, headers, len(data), func(i int) []interface{} {
		r := data[i]
		if !r.Verdict.Found() {
			return []interface{}{r.Row, r.Incoming.Name, r.Incoming.Phone, "new", "", "", "", ""}
		}
		m := r.Verdict.Match
		return []interface{}{
			r.Row, r.Incoming.Name, r.Incoming.Phone,
			"duplicate", string(r.Verdict.Reason), m.ID, m.Name, m.Phone,
		}
	})
}

func WriteNearest(path string, data []NearestRow, sheetName string) error {
	headers := []interface{}{
		"Row", "Incoming Name", "Incoming Lat", "Incoming Lon",
		"Nearest ID", "Nearest Name", "Nearest Lat", "Nearest Lon", "Distance (km)",
	}
	return writeSheet(path, sheetName, headers, len(data), func(i int) []interface{} {
		r := data[i]
		row := []interface{}{r.Row, r.Incoming.Name, "", ""}
		if r.Incoming.Loc != nil {
			row[2], row[3] = r.Incoming.Loc.Lat, r.Incoming.Loc.Lon
		}
		if r.Nearest == nil {
			return append(row, "", "", "", "", "")
		}
		n := r.Nearest
		return append(row, n.ID, n.Name, n.Loc.Lat, n.Loc.Lon, n.DistanceKm)
	})
}

func writeSheet(path, sheetName string, headers []interface{}, n int, rowAt func(i int) []interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, rowAt(i)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	// Delete default sheet if exists
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
