package server

import (
	"contact-radar/internal/directory"
	"contact-radar/internal/models"
	"contact-radar/internal/textutil"
)

type contactView struct {
	models.Contact
	PhoneDisplay string `json:"phone_display"`
	Initials     string `json:"initials"`
	SourceLabel  string `json:"source_label"`
}

type rankedView struct {
	contactView
	DistanceKm float64 `json:"distance_km"`
	Rank       int     `json:"rank"`
}

type groupView struct {
	Organization string        `json:"organization"`
	Count        int           `json:"count"`
	Contacts     []contactView `json:"contacts"`
}

type verdict struct {
	Duplicate bool         `json:"duplicate"`
	Reason    string       `json:"reason,omitempty"`
	Match     *contactView `json:"match,omitempty"`
}

func newContactView(c models.Contact) contactView {
	return contactView{
		Contact:      c,
		PhoneDisplay: textutil.FormatPhone(c.Phone),
		Initials:     textutil.Initials(c.Name),
		SourceLabel:  c.Source.Label(),
	}
}

func contactViews(cs []models.Contact) []contactView {
	out := make([]contactView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newContactView(c))
	}
	return out
}

func rankedViews(rs []models.RankedContact) []rankedView {
	out := make([]rankedView, 0, len(rs))
	for _, r := range rs {
		out = append(out, rankedView{contactView: newContactView(r.Contact), DistanceKm: r.DistanceKm, Rank: r.Rank})
	}
	return out
}

func groupViews(gs []directory.Group) []groupView {
	out := make([]groupView, 0, len(gs))
	for _, g := range gs {
		out = append(out, groupView{Organization: g.Organization, Count: len(g.Contacts), Contacts: contactViews(g.Contacts)})
	}
	return out
}

func verdictView(v models.DuplicateVerdict) verdict {
	if !v.Found() {
		return verdict{}
	}
	m := newContactView(*v.Match)
	return verdict{Duplicate: true, Reason: string(v.Reason), Match: &m}
}
