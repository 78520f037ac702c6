// Package directory is the in-memory contact repository the service reads from.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"contact-radar/internal/duplicate"
	"contact-radar/internal/models"
	"contact-radar/internal/textutil"
)

const NoOrganization = "No Organization"

var (
	ErrNotFound       = errors.New("contact not found")
	ErrInvalidContact = errors.New("invalid contact")
)

// DuplicateError is returned by Create when the new contact already exists.
type DuplicateError struct {
	Verdict models.DuplicateVerdict
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate of contact %s (%s)", e.Verdict.Match.ID, e.Verdict.Reason)
}

type Directory struct {
	mu       sync.RWMutex
	contacts []models.Contact
	orgs     []models.Organization
	orgIndex map[string]int
}

// New builds a directory and resolves each contact's organization reference.
func New(contacts []models.Contact, orgs []models.Organization) *Directory {
	d := &Directory{
		orgs:     append([]models.Organization(nil), orgs...),
		orgIndex: make(map[string]int, len(orgs)),
	}
	for i, o := range d.orgs {
		d.orgIndex[o.ID] = i
	}
	d.contacts = make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		d.contacts = append(d.contacts, d.resolve(c))
	}
	return d
}

func (d *Directory) resolve(c models.Contact) models.Contact {
	c.Organization = nil
	if i, ok := d.orgIndex[c.OrganizationID]; ok {
		org := d.orgs[i]
		c.Organization = &org
	}
	return c
}

// Contacts returns a snapshot in directory order.
func (d *Directory) Contacts() []models.Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Contact(nil), d.contacts...)
}

func (d *Directory) Organizations() []models.Organization {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Organization(nil), d.orgs...)
}

func (d *Directory) Get(id string) (models.Contact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Contact{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Filter narrows a contact listing. Zero value matches everything.
type Filter struct {
	Search         string
	FavoritesOnly  bool
	OrganizationID string
}

// List applies f to a snapshot. Search is a case-insensitive substring of name or phone.
func (d *Directory) List(f Filter) []models.Contact {
	term := textutil.NormalizeName(f.Search)
	var out []models.Contact
	for _, c := range d.Contacts() {
		if f.FavoritesOnly && !c.Favorite {
			continue
		}
		if f.OrganizationID != "" && c.OrganizationID != f.OrganizationID {
			continue
		}
		if term != "" &&
			!strings.Contains(textutil.NormalizeName(c.Name), term) &&
			!strings.Contains(textutil.NormalizeName(c.Phone), term) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CheckDuplicate runs the detector against the current directory.
func (d *Directory) CheckDuplicate(phone, name string) models.DuplicateVerdict {
	return duplicate.Find(phone, name, d.Contacts())
}

// Create adds c unless it duplicates an existing contact. With force the
// duplicate check still runs and its verdict is returned alongside the new contact.
func (d *Directory) Create(c models.Contact, force bool) (models.Contact, models.DuplicateVerdict, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" || c.Phone == "" {
		return models.Contact{}, models.DuplicateVerdict{}, fmt.Errorf("name and phone are required: %w", ErrInvalidContact)
	}
	if c.Loc != nil && !c.Loc.Valid() {
		return models.Contact{}, models.DuplicateVerdict{}, fmt.Errorf("location (%v, %v) out of range: %w", c.Loc.Lat, c.Loc.Lon, ErrInvalidContact)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	v := duplicate.Find(c.Phone, c.Name, d.contacts)
	if v.Found() && !force {
		return models.Contact{}, v, &DuplicateError{Verdict: v}
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Source = models.ParseSource(string(c.Source))
	c.Favorite = false
	c = d.resolve(c)
	d.contacts = append(d.contacts, c)
	return c, v, nil
}

func (d *Directory) SetFavorite(id string, favorite bool) (models.Contact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.contacts {
		if d.contacts[i].ID == id {
			d.contacts[i].Favorite = favorite
			return d.contacts[i], nil
		}
	}
	return models.Contact{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}
