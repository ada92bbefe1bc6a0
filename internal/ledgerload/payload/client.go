package payload

type ClientRequest struct {
	OfficeID        int64  `json:"officeId" validate:"required"`
	Firstname       string `json:"firstname" validate:"required"`
	Lastname        string `json:"lastname" validate:"required"`
	ExternalID      string `json:"externalId,omitempty"`
	LegalFormID     int    `json:"legalFormId" validate:"required"`
	Active          bool   `json:"active"`
	ActivationDate  string `json:"activationDate,omitempty" validate:"required_if=Active true"`
	SubmittedOnDate string `json:"submittedOnDate" validate:"required"`
	DateConventions
}

const (
	defaultOfficeID    = 1
	personLegalFormID  = 1
	defaultClientFirst = "John"
)

// Client builds an active person client in the head office. lastName is what the client is later
// looked up by; externalID is the correlation code.
func Client(lastName, externalID, date string) (ClientRequest, error) {
	req := ClientRequest{
		OfficeID:        defaultOfficeID,
		Firstname:       defaultClientFirst,
		Lastname:        lastName,
		ExternalID:      externalID,
		LegalFormID:     personLegalFormID,
		Active:          true,
		ActivationDate:  date,
		SubmittedOnDate: date,
		DateConventions: defaultDateConventions(),
	}
	return req, Validate("client", req)
}
