package models

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is inside decimal-degree bounds. NaN is never valid.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

type ContactSource string

const (
	SourceManual     ContactSource = "manual"
	SourceTruecaller ContactSource = "truecaller"
	SourceImported   ContactSource = "imported"
	SourceVoice      ContactSource = "voice"
)

// ParseSource maps free text to a known source, falling back to manual.
func ParseSource(s string) ContactSource {
	switch ContactSource(s) {
	case SourceTruecaller, SourceImported, SourceVoice:
		return ContactSource(s)
	}
	return SourceManual
}

func (s ContactSource) Label() string {
	switch s {
	case SourceVoice:
		return "Voice Input"
	case SourceTruecaller:
		return "Truecaller"
	case SourceImported:
		return "Imported"
	}
	return "Manual Entry"
}

type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
}

type Contact struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Email    string      `json:"email,omitempty"`
	JobTitle string      `json:"job_title,omitempty"`
	Address  string      `json:"address,omitempty"`
	City     string      `json:"city,omitempty"`
	Country  string      `json:"country,omitempty"`
	Tags     string      `json:"tags,omitempty"`
	Notes    string      `json:"notes,omitempty"`
	Loc      *Coordinate `json:"location,omitempty"` // nil when the contact is not locatable

	OrganizationID string        `json:"organization_id,omitempty"`
	Organization   *Organization `json:"organization,omitempty"`

	Source   ContactSource `json:"source"`
	Favorite bool          `json:"favorite"`

	// RowIndex is the 1-based workbook row the contact was read from, 0 if not imported.
	RowIndex int `json:"-"`
}

type RankedContact struct {
	Contact
	DistanceKm float64 `json:"distance_km"`
	Rank       int     `json:"rank"`
}

type MatchReason string

const (
	ReasonPhoneExact  MatchReason = "phone-exact"
	ReasonNameSimilar MatchReason = "name-similar"
)

// DuplicateVerdict is the zero value when nothing matched.
type DuplicateVerdict struct {
	Match  *Contact    `json:"match,omitempty"`
	Reason MatchReason `json:"reason,omitempty"`
}

func (v DuplicateVerdict) Found() bool {
	return v.Match != nil
}
