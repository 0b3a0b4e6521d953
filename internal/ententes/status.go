package ententes

import "github.com/rilesCL/Projet-Leandrose-sub000/internal/models"

// Badge is the display status of an entente for a given viewer.
type Badge string

const (
	BadgeDraft                   Badge = "DRAFT"
	BadgeValidated               Badge = "VALIDATED"
	BadgeAwaitingYourSignature   Badge = "AWAITING_YOUR_SIGNATURE"
	BadgeAwaitingOtherSignatures Badge = "AWAITING_OTHER_SIGNATURES"
	BadgeInvalidOrder            Badge = "INVALID_ORDER"
	BadgeUnknown                 Badge = "UNKNOWN"
)

// Party is one of the three signatories.
type Party string

const (
	PartyEmployeur    Party = "EMPLOYEUR"
	PartyEtudiant     Party = "ETUDIANT"
	PartyGestionnaire Party = "GESTIONNAIRE"
)

// PartyForRole returns the signatory a role signs as.
func PartyForRole(role models.Role) (Party, bool) {
	switch role {
	case models.RoleEmployeur:
		return PartyEmployeur, true
	case models.RoleStudent:
		return PartyEtudiant, true
	case models.RoleGestionnaire:
		return PartyGestionnaire, true
	default:
		return "", false
	}
}

// Status is the viewer-specific projection of an entente.
type Status struct {
	Badge              Badge   `json:"badge"`
	SignableByViewer   bool    `json:"signableByViewer"`
	WaitingOn          []Party `json:"waitingOn"`
	CanAssignProfessor bool    `json:"canAssignProfessor"`
}

// Waits reports whether p still has to sign.
func (s Status) Waits(p Party) bool {
	for _, w := range s.WaitingOn {
		if w == p {
			return true
		}
	}
	return false
}

// DeriveStatus computes the badge and the actions available to viewer.
// The result is advisory: the backend re-validates every signature.
func DeriveStatus(e models.Entente, viewer models.Role) Status {
	switch e.Statut {
	case models.EntenteStatusValidee:
		return Status{
			Badge:              BadgeValidated,
			WaitingOn:          []Party{},
			CanAssignProfessor: viewer == models.RoleGestionnaire && e.Prof == nil,
		}
	case models.EntenteStatusBrouillon:
		return Status{Badge: BadgeDraft, WaitingOn: []Party{}}
	case models.EntenteStatusEnAttenteSignature:
		return awaitingSignatures(e, viewer)
	default:
		return Status{Badge: BadgeUnknown, WaitingOn: []Party{}}
	}
}

func awaitingSignatures(e models.Entente, viewer models.Role) Status {
	employeur, etudiant, gestionnaire := e.EmployeurSigned(), e.EtudiantSigned(), e.GestionnaireSigned()

	waiting := make([]Party, 0, 3)
	if !employeur {
		waiting = append(waiting, PartyEmployeur)
	}
	if !etudiant {
		waiting = append(waiting, PartyEtudiant)
	}
	if !gestionnaire {
		waiting = append(waiting, PartyGestionnaire)
	}

	status := Status{Badge: BadgeAwaitingOtherSignatures, WaitingOn: waiting}

	if viewer == models.RoleGestionnaire {
		// The manager signs last.
		switch {
		case gestionnaire && (!employeur || !etudiant):
			status.Badge = BadgeInvalidOrder
		case employeur && etudiant && !gestionnaire:
			status.Badge = BadgeAwaitingYourSignature
			status.SignableByViewer = true
		}
		return status
	}

	if own, ok := PartyForRole(viewer); ok && status.Waits(own) {
		status.Badge = BadgeAwaitingYourSignature
		status.SignableByViewer = true
	}
	return status
}
