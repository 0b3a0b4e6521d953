// Package dashboard selects and loads the single section a role's dashboard shows.
package dashboard

import (
	"slices"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

// Section names one child view of a dashboard shell.
type Section string

const (
	SectionCV           Section = "cv"
	SectionCVs          Section = "cvs"
	SectionOffers       Section = "offers"
	SectionCandidatures Section = "candidatures"
	SectionConvocations Section = "convocations"
	SectionEntentes     Section = "ententes"
)

var sectionsByRole = map[models.Role][]Section{
	models.RoleStudent:      {SectionCV, SectionOffers, SectionCandidatures, SectionConvocations, SectionEntentes},
	models.RoleEmployeur:    {SectionOffers, SectionCandidatures, SectionEntentes},
	models.RoleGestionnaire: {SectionCVs, SectionOffers, SectionCandidatures, SectionEntentes},
	models.RoleProf:         {SectionEntentes},
}

// Sections lists the sections available to role, default first.
func Sections(role models.Role) []Section {
	return slices.Clone(sectionsByRole[role])
}

// SelectSection returns query when it names a section of role, otherwise the
// role's default section. Roles without a dashboard get "".
func SelectSection(role models.Role, query string) Section {
	available := sectionsByRole[role]
	if len(available) == 0 {
		return ""
	}
	wanted := Section(strings.ToLower(strings.TrimSpace(query)))
	if slices.Contains(available, wanted) {
		return wanted
	}
	return available[0]
}
