package ententes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

// Term is an academic period such as "WINTER 2025".
type Term struct {
	Season string
	Year   int
}

// ParseTerm splits a "<SEASON> <YEAR>" tag on whitespace.
func ParseTerm(raw string) (Term, error) {
	parts := strings.Fields(raw)
	if len(parts) != 2 {
		return Term{}, fmt.Errorf("school term %q: expected \"<SEASON> <YEAR>\"", raw)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Term{}, fmt.Errorf("school term %q: invalid year: %w", raw, err)
	}
	return Term{Season: strings.ToUpper(parts[0]), Year: year}, nil
}

// String renders the term in the backend's tag format.
func (t Term) String() string {
	return fmt.Sprintf("%s %d", t.Season, t.Year)
}

// Matches reports whether a raw term tag denotes t.
func (t Term) Matches(raw string) bool {
	other, err := ParseTerm(raw)
	if err != nil {
		return false
	}
	return other.Year == t.Year && strings.EqualFold(other.Season, t.Season)
}

// FilterByTerm keeps ententes whose offer belongs to term. A nil term keeps everything.
func FilterByTerm(list []models.Entente, term *Term) []models.Entente {
	return filter(list, term, func(e models.Entente) string { return e.InternshipOffer.SchoolTerm })
}

// FilterCandidaturesByTerm keeps candidatures whose offer belongs to term.
func FilterCandidaturesByTerm(list []models.Candidature, term *Term) []models.Candidature {
	return filter(list, term, func(c models.Candidature) string { return c.InternshipOffer.SchoolTerm })
}

// FilterOffersByTerm keeps offers tagged with term.
func FilterOffersByTerm(list []models.InternshipOffer, term *Term) []models.InternshipOffer {
	return filter(list, term, func(o models.InternshipOffer) string { return o.SchoolTerm })
}

func filter[T any](list []T, term *Term, tag func(T) string) []T {
	if term == nil {
		return list
	}
	out := make([]T, 0, len(list))
	for _, item := range list {
		if term.Matches(tag(item)) {
			out = append(out, item)
		}
	}
	return out
}
