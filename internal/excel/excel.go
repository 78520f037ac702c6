package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"contact-radar/internal/models"
)

// Contacts sheet columns, zero based.
const (
	colID = iota
	colName
	colPhone
	colEmail
	colOrganization
	colJobTitle
	colCity
	colCountry
	colAddress
	colLat
	colLon
	colFavorite
	colTags
	colSource
	colNotes
)

func parseCoord(val string) (float64, error) {
	// Replace comma with dot for locales that use decimal commas
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}

// cell tolerates the ragged rows excelize returns when trailing cells are empty.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

func hasSheet(f *excelize.File, sheetName string) bool {
	idx, err := f.GetSheetIndex(sheetName)
	return err == nil && idx >= 0
}

// ReadContacts reads a Contacts sheet. Rows with a blank or unparsable latitude or
// longitude keep the contact with a nil location. So do rows whose coordinates parse
// but fall outside the valid range; their sheet row numbers are returned as rejected.
func ReadContacts(f *excelize.File, sheetName string) (contacts []models.Contact, rejected []int, err error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, err
	}

	// Assume header is row 0, start from row 1
	for i, row := range rows {
		if i == 0 {
			continue // Skip header
		}
		name, phone := cell(row, colName), cell(row, colPhone)
		if name == "" && phone == "" {
			continue
		}

		c := models.Contact{
			ID:             cell(row, colID),
			Name:           name,
			Phone:          phone,
			Email:          cell(row, colEmail),
			OrganizationID: cell(row, colOrganization),
			JobTitle:       cell(row, colJobTitle),
			City:           cell(row, colCity),
			Country:        cell(row, colCountry),
			Address:        cell(row, colAddress),
			Favorite:       parseBool(cell(row, colFavorite)),
			Tags:           cell(row, colTags),
			Source:         models.ParseSource(strings.ToLower(cell(row, colSource))),
			Notes:          cell(row, colNotes),
			RowIndex:       i + 1,
		}
		if c.ID == "" {
			c.ID = uuid.New().String()
		}

		lat, err1 := parseCoord(cell(row, colLat))
		lon, err2 := parseCoord(cell(row, colLon))
		if err1 == nil && err2 == nil {
			if loc := (models.Coordinate{Lat: lat, Lon: lon}); loc.Valid() {
				c.Loc = &loc
			} else {
				rejected = append(rejected, c.RowIndex)
			}
		}

		contacts = append(contacts, c)
	}
	return contacts, rejected, nil
}

// ReadOrganizations reads an Organizations sheet; a workbook without one yields no organizations.
func ReadOrganizations(f *excelize.File, sheetName string) ([]models.Organization, error) {
	if !hasSheet(f, sheetName) {
		return nil, nil
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var orgs []models.Organization
	for i, row := range rows {
		if i == 0 {
			continue
		}
		id := cell(row, 0)
		if id == "" {
			continue
		}
		orgs = append(orgs, models.Organization{
			ID:          id,
			Name:        cell(row, 1),
			Industry:    cell(row, 2),
			Website:     cell(row, 3),
			Description: cell(row, 4),
		})
	}
	return orgs, nil
}

// Workbook is the content of a directory workbook.
type Workbook struct {
	Contacts      []models.Contact
	Organizations []models.Organization
	// RejectedLocations lists Contacts rows whose coordinates were out of range.
	RejectedLocations []int
}

// LoadWorkbook opens path and reads both directory sheets.
func LoadWorkbook(path, contactsSheet, organizationsSheet string) (*Workbook, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	contacts, rejected, err := ReadContacts(f, contactsSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", contactsSheet, err)
	}
	orgs, err := ReadOrganizations(f, organizationsSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", organizationsSheet, err)
	}
	return &Workbook{Contacts: contacts, Organizations: orgs, RejectedLocations: rejected}, nil
}
