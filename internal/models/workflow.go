package models

// CVStatus is the review state of a student's CV.
type CVStatus string

const (
	CVStatusPending  CVStatus = "PENDING"
	CVStatusApproved CVStatus = "APPROVED"
	CVStatusRejected CVStatus = "REJECTED"
)

// CV is the single resume a student keeps on file.
type CV struct {
	ID               int64    `json:"id"`
	Student          Student  `json:"studentDto"`
	Status           CVStatus `json:"status"`
	RejectionComment string   `json:"rejectionComment,omitempty"`
	PDFPath          string   `json:"pdfPath,omitempty"`
}

// OfferStatus is the approval state of an internship offer.
type OfferStatus string

const (
	OfferStatusPendingValidation OfferStatus = "PENDING_VALIDATION"
	OfferStatusPublished         OfferStatus = "PUBLISHED"
	OfferStatusApproved          OfferStatus = "APPROVED"
	OfferStatusRejected          OfferStatus = "REJECTED"
)

// OfferListing selects one of the manager's offer queues.
type OfferListing string

const (
	OfferListingPending  OfferListing = "pending"
	OfferListingApproved OfferListing = "approved"
	OfferListingRejected OfferListing = "rejected"
)

// InternshipOffer is an employer-authored posting.
type InternshipOffer struct {
	ID               int64       `json:"id"`
	Description      string      `json:"description"`
	Address          string      `json:"address"`
	Duration         int         `json:"duration"`
	Remuneration     float64     `json:"remuneration"`
	StartDate        *Timestamp  `json:"startDate"`
	ExpirationDate   *Timestamp  `json:"expirationDate,omitempty"`
	Status           OfferStatus `json:"status"`
	SchoolTerm       string      `json:"schoolTerm"`
	RejectionComment string      `json:"rejectionComment,omitempty"`
	Employeur        Employeur   `json:"employeurDto"`
}

// CandidatureStatus tracks a student's application through the hiring steps.
type CandidatureStatus string

const (
	CandidatureStatusPending             CandidatureStatus = "PENDING"
	CandidatureStatusConvened            CandidatureStatus = "CONVENED"
	CandidatureStatusAcceptedByEmployeur CandidatureStatus = "ACCEPTEDBYEMPLOYEUR"
	CandidatureStatusAccepted            CandidatureStatus = "ACCEPTED"
	CandidatureStatusRejected            CandidatureStatus = "REJECTED"
)

// Candidature links a student to an offer.
type Candidature struct {
	ID              int64             `json:"id"`
	Student         Student           `json:"student"`
	InternshipOffer InternshipOffer   `json:"internshipOffer"`
	Status          CandidatureStatus `json:"status"`
	ApplicationDate *Timestamp        `json:"applicationDate"`
}

// Convocation is an interview invitation attached to a candidature.
type Convocation struct {
	ID            int64      `json:"id"`
	CandidatureID int64      `json:"candidatureId"`
	ConvocationAt *Timestamp `json:"convocationDate"`
	Location      string     `json:"location"`
	Message       string     `json:"personnalMessage,omitempty"`
}

// EntenteStatus is the coarse, server-driven state of an agreement.
type EntenteStatus string

const (
	EntenteStatusBrouillon          EntenteStatus = "BROUILLON"
	EntenteStatusEnAttenteSignature EntenteStatus = "EN_ATTENTE_SIGNATURE"
	EntenteStatusValidee            EntenteStatus = "VALIDEE"
)

// Entente is the tripartite internship agreement.
type Entente struct {
	ID                        int64           `json:"id"`
	Student                   Student         `json:"student"`
	InternshipOffer           InternshipOffer `json:"internshipOffer"`
	Prof                      *Prof           `json:"prof"`
	DateCreation              *Timestamp      `json:"dateCreation"`
	DateDebut                 *Timestamp      `json:"dateDebut"`
	Duree                     int             `json:"duree"`
	Lieu                      string          `json:"lieu,omitempty"`
	Remuneration              string          `json:"remuneration,omitempty"`
	Missions                  string          `json:"missions,omitempty"`
	DateSignatureEmployeur    *Timestamp      `json:"dateSignatureEmployeur"`
	DateSignatureEtudiant     *Timestamp      `json:"dateSignatureEtudiant"`
	DateSignatureGestionnaire *Timestamp      `json:"dateSignatureGestionnaire"`
	Statut                    EntenteStatus   `json:"statut"`
}

// EmployeurSigned reports whether the employer has signed.
func (e Entente) EmployeurSigned() bool { return present(e.DateSignatureEmployeur) }

// EtudiantSigned reports whether the student has signed.
func (e Entente) EtudiantSigned() bool { return present(e.DateSignatureEtudiant) }

// GestionnaireSigned reports whether the manager has signed.
func (e Entente) GestionnaireSigned() bool { return present(e.DateSignatureGestionnaire) }

func present(t *Timestamp) bool {
	return t != nil && !t.IsZero()
}
