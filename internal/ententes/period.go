package ententes

import (
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

// EndDate returns the last day of an internship lasting weeks weeks from start.
func EndDate(start time.Time, weeks int) time.Time {
	return start.AddDate(0, 0, weeks*7)
}

// DateFin derives the entente's end date. It is never stored.
func DateFin(e models.Entente) (time.Time, bool) {
	if e.DateDebut == nil || e.DateDebut.IsZero() {
		return time.Time{}, false
	}
	return EndDate(e.DateDebut.Time, e.Duree), true
}
