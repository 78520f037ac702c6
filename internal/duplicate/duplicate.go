// Package duplicate decides whether an incoming contact already exists in a directory.
package duplicate

import (
	"contact-radar/internal/models"
	"contact-radar/internal/textutil"
)

// Find checks candidatePhone against every existing contact first and returns the
// earliest phone match. Only when no phone matches and candidateName is non-blank
// does it fall back to name similarity, again first match wins. Existing contacts
// with a blank name never match by name.
//
// The returned Match is a deep copy; writing through it leaves existing untouched.
func Find(candidatePhone, candidateName string, existing []models.Contact) models.DuplicateVerdict {
	if phone := textutil.NormalizePhone(candidatePhone); phone != "" {
		for i := range existing {
			if textutil.NormalizePhone(existing[i].Phone) == phone {
				return verdict(existing[i], models.ReasonPhoneExact)
			}
		}
	}

	name := textutil.NormalizeName(candidateName)
	if name == "" {
		return models.DuplicateVerdict{}
	}
	for i := range existing {
		// a blank name is a substring of everything
		if textutil.NormalizeName(existing[i].Name) == "" {
			continue
		}
		if textutil.NamesSimilar(name, existing[i].Name) {
			return verdict(existing[i], models.ReasonNameSimilar)
		}
	}
	return models.DuplicateVerdict{}
}

func verdict(c models.Contact, reason models.MatchReason) models.DuplicateVerdict {
	if c.Loc != nil {
		loc := *c.Loc
		c.Loc = &loc
	}
	if c.Organization != nil {
		org := *c.Organization
		c.Organization = &org
	}
	return models.DuplicateVerdict{Match: &c, Reason: reason}
}
