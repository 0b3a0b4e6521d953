package ententes

import (
	"strconv"
	"strings"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/models"
)

// Row is one line of an entente list as rendered for a particular viewer.
type Row struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	StudentName  string               `json:"studentName"`
	StudentEmail string               `json:"studentEmail"`
	CompanyName  string               `json:"companyName"`
	ProfName     string               `json:"profName,omitempty"`
	Counterparty string               `json:"counterparty"`
	SchoolTerm   string               `json:"schoolTerm"`
	DateCreation string               `json:"dateCreation"`
	DateDebut    string               `json:"dateDebut"`
	DateFin      string               `json:"dateFin"`
	Duree        int                  `json:"duree"`
	Statut       models.EntenteStatus `json:"statut"`
	Status       Status               `json:"status"`
}

// SortValue returns the raw value of a sortable column.
func (r Row) SortValue(field string) string {
	switch field {
	case "id":
		return strconv.FormatInt(r.ID, 10)
	case "title", "description":
		return r.Title
	case "student", "studentName":
		return r.StudentName
	case "company", "companyName", "employeur":
		return r.CompanyName
	case "prof", "profName":
		return r.ProfName
	case "counterparty":
		return r.Counterparty
	case "dateCreation":
		return r.DateCreation
	case "dateDebut":
		return r.DateDebut
	case "dateFin":
		return r.DateFin
	case "duree":
		return strconv.Itoa(r.Duree)
	case "statut":
		return string(r.Statut)
	case "badge":
		return string(r.Status.Badge)
	default:
		return ""
	}
}

// Adapter renders a list of ententes for one kind of viewer.
type Adapter func(list []models.Entente) []Row

// StudentView shows the employer as counterparty.
func StudentView(list []models.Entente) []Row {
	return project(list, models.RoleStudent, func(e models.Entente) string {
		return e.InternshipOffer.Employeur.CompanyName
	})
}

// EmployerView shows the student as counterparty.
func EmployerView(list []models.Entente) []Row {
	return project(list, models.RoleEmployeur, func(e models.Entente) string {
		return e.Student.FullName()
	})
}

// ManagerView shows both parties.
func ManagerView(list []models.Entente) []Row {
	return project(list, models.RoleGestionnaire, func(e models.Entente) string {
		return strings.TrimSpace(e.Student.FullName() + " / " + e.InternshipOffer.Employeur.CompanyName)
	})
}

// ProfView shows the student supervised under the entente.
func ProfView(list []models.Entente) []Row {
	return project(list, models.RoleProf, func(e models.Entente) string {
		return e.Student.FullName()
	})
}

// AdapterFor picks the list adapter for role. Unknown roles get nothing.
func AdapterFor(role models.Role) (Adapter, bool) {
	switch role {
	case models.RoleStudent:
		return StudentView, true
	case models.RoleEmployeur:
		return EmployerView, true
	case models.RoleGestionnaire:
		return ManagerView, true
	case models.RoleProf:
		return ProfView, true
	default:
		return nil, false
	}
}

// List filters, projects and sorts ententes for role in one pass.
func List(list []models.Entente, role models.Role, term *Term, sortState SortState) []Row {
	adapter, ok := AdapterFor(role)
	if !ok {
		return []Row{}
	}
	rows := adapter(FilterByTerm(list, term))
	SortRows(rows, sortState)
	return rows
}

func project(list []models.Entente, viewer models.Role, counterparty func(models.Entente) string) []Row {
	rows := make([]Row, 0, len(list))
	for _, e := range list {
		row := Row{
			ID:           e.ID,
			Title:        e.InternshipOffer.Description,
			StudentName:  e.Student.FullName(),
			StudentEmail: e.Student.Email,
			CompanyName:  e.InternshipOffer.Employeur.CompanyName,
			Counterparty: counterparty(e),
			SchoolTerm:   e.InternshipOffer.SchoolTerm,
			DateCreation: formatDate(e.DateCreation),
			DateDebut:    formatDate(e.DateDebut),
			Duree:        e.Duree,
			Statut:       e.Statut,
			Status:       DeriveStatus(e, viewer),
		}
		if e.Prof != nil {
			row.ProfName = e.Prof.FullName()
		}
		if fin, ok := DateFin(e); ok {
			row.DateFin = fin.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return rows
}

func formatDate(t *models.Timestamp) string {
	if t == nil {
		return ""
	}
	return t.String()
}
