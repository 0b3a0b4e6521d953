package models

import "strings"

// Role identifies which dashboard and which backend endpoints a user is entitled to.
type Role string

const (
	RoleStudent      Role = "STUDENT"
	RoleEmployeur    Role = "EMPLOYEUR"
	RoleGestionnaire Role = "GESTIONNAIRE"
	RoleProf         Role = "PROF"
	RoleUnknown      Role = "UNKNOWN"
)

// ParseRole normalizes a backend role string. Unrecognised values map to RoleUnknown.
func ParseRole(raw string) Role {
	switch role := Role(strings.ToUpper(strings.TrimSpace(raw))); role {
	case RoleStudent, RoleEmployeur, RoleGestionnaire, RoleProf:
		return role
	default:
		return RoleUnknown
	}
}

// PathSegment returns the backend URL prefix used for role-scoped endpoints.
func (r Role) PathSegment() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleEmployeur:
		return "employeur"
	case RoleGestionnaire:
		return "gestionnaire"
	case RoleProf:
		return "prof"
	default:
		return ""
	}
}

// User is the authenticated account as reported by GET /user/me.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// LoginResponse is returned by POST /user/login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Student is the subset of student data embedded in other records.
type Student struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Program   string `json:"program,omitempty"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Employeur is the company side of an offer.
type Employeur struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"companyName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
}

// Prof is a supervising professor that can be attributed to a validated entente.
type Prof struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// FullName joins first and last name.
func (p Prof) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
