package models

// RegisterCaseRequest is the payload for POST /cases
type RegisterCaseRequest struct {
	Title            string         `json:"title" validate:"required"`
	Description      string         `json:"description" validate:"required"`
	Type             CaseType       `json:"type" validate:"required"`
	AccusedDetails   AccusedDetails `json:"accusedDetails"`
	InvolvedCitizens []string       `json:"involvedCitizens"`
	LawyerType       LawyerType     `json:"lawyerType"`
}

// UpdateCaseRequest is the partial-patch payload for PUT /cases/{case_id}.
// Only fields present in the request are applied.
type UpdateCaseRequest struct {
	Status    *CaseStatus `json:"status,omitempty"`
	Judgement *Judgement  `json:"judgement,omitempty"`
	Hearing   *Hearing    `json:"hearing,omitempty"`
}

// LawyerActionRequest is the payload for PUT /cases/{case_id}/lawyer.
// Any action other than "accept" rejects the request.
type LawyerActionRequest struct {
	Action string `json:"action" validate:"required"`
}

// CreatePaymentRequest is the payload for POST /payments
type CreatePaymentRequest struct {
	CaseID string      `json:"caseId" validate:"required"`
	Amount float64     `json:"amount" validate:"required,gt=0"`
	Type   PaymentType `json:"type" validate:"required"`
}

// VerifyPaymentRequest is the payload for PUT /payments/{payment_id}
type VerifyPaymentRequest struct {
	Status PaymentStatus `json:"status" validate:"required"`
}

// UpsertSummaryRequest is the payload for POST /summary
type UpsertSummaryRequest struct {
	CaseID         string `json:"caseId" validate:"required"`
	SummaryContent string `json:"summaryContent"`
	FinalJudgement string `json:"finalJudgement"`
}

// UpdateProfileRequest is the payload for PUT /users/profile
type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}
