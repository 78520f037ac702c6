package directory

import "contact-radar/internal/models"

type Group struct {
	Organization string           `json:"organization"`
	Contacts     []models.Contact `json:"contacts"`
}

// GroupByOrganization partitions contacts by organization name, keeping the
// order in which each group is first seen.
func GroupByOrganization(contacts []models.Contact) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, c := range contacts {
		key := NoOrganization
		if c.Organization != nil && c.Organization.Name != "" {
			key = c.Organization.Name
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Organization: key})
		}
		groups[i].Contacts = append(groups[i].Contacts, c)
	}
	return groups
}

type Stats struct {
	Contacts      int `json:"contacts"`
	Organizations int `json:"organizations"`
	Favorites     int `json:"favorites"`
	WithLocation  int `json:"with_location"`
	Cities        int `json:"cities"`
}

// Stats counts distinct cities among located contacts only.
func (d *Directory) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Stats{Contacts: len(d.contacts), Organizations: len(d.orgs)}
	cities := make(map[string]struct{})
	for _, c := range d.contacts {
		if c.Favorite {
			s.Favorites++
		}
		if c.Loc != nil {
			s.WithLocation++
			cities[c.City] = struct{}{}
		}
	}
	s.Cities = len(cities)
	return s
}
