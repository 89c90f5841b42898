package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseType distinguishes regular filings from pro bono ones
type CaseType string

// Case types
const (
	CaseTypeNormal  CaseType = "normal"
	CaseTypeProBono CaseType = "probono"
)

// Valid reports whether t is a known case type
func (t CaseType) Valid() bool {
	return t == CaseTypeNormal || t == CaseTypeProBono
}

// CaseStatus is the judicial status of a case
type CaseStatus string

// Case statuses
const (
	CaseStatusOngoing        CaseStatus = "ongoing"
	CaseStatusDismissed      CaseStatus = "dismissed"
	CaseStatusJudgementGiven CaseStatus = "judgement given"
)

// Valid reports whether s is a known case status
func (s CaseStatus) Valid() bool {
	return s == CaseStatusOngoing || s == CaseStatusDismissed || s == CaseStatusJudgementGiven
}

// Terminal reports whether the status closes the case
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusDismissed || s == CaseStatusJudgementGiven
}

// AccusedDetails holds the free-form, unverified details of the accused party
type AccusedDetails struct {
	Name    string `json:"name" bson:"name"`
	Aadhaar string `json:"aadhaar" bson:"aadhaar"`
	Address string `json:"address" bson:"address"`
}

// Hearing is one entry in a case's ordered hearing log
type Hearing struct {
	Date       primitive.DateTime `json:"date" bson:"date"`
	Update     string             `json:"update" bson:"update"`
	UploadedBy string             `json:"uploadedBy" bson:"uploadedBy"`
}

// Judgement is the final verdict block recorded by the court
type Judgement struct {
	Summary string             `json:"summary" bson:"summary"`
	Date    primitive.DateTime `json:"date" bson:"date"`
	FileURL string             `json:"fileUrl" bson:"fileUrl"`
}

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID                  primitive.ObjectID   `json:"_id" bson:"_id"`
	CaseNumber          string               `json:"caseNumber" bson:"caseNumber"`
	Title               string               `json:"title" bson:"title"`
	Description         string               `json:"description" bson:"description"`
	Type                CaseType             `json:"type" bson:"type"`
	Status              CaseStatus           `json:"status" bson:"status"`
	Complainant         primitive.ObjectID   `json:"complainant" bson:"complainant"`
	AccusedDetails      AccusedDetails       `json:"accusedDetails" bson:"accusedDetails"`
	InvolvedCitizens    []primitive.ObjectID `json:"involvedCitizens" bson:"involvedCitizens"`
	Lawyer              *primitive.ObjectID  `json:"lawyer,omitempty" bson:"lawyer,omitempty"`
	LawyerRequestStatus LawyerRequestStatus  `json:"lawyerRequestStatus" bson:"lawyerRequestStatus"`
	LawyerType          LawyerType           `json:"lawyerType" bson:"lawyerType"`
	Hearings            []Hearing            `json:"hearings" bson:"hearings"`
	Judgement           *Judgement           `json:"judgement,omitempty" bson:"judgement,omitempty"`
	CreatedAt           primitive.DateTime   `json:"createdAt" bson:"createdAt"`
}

// InvolvesUser reports whether the given user id is the complainant, the
// assigned lawyer or one of the involved citizens of the case
func (c *Case) InvolvesUser(userID primitive.ObjectID) bool {
	if c.Complainant == userID {
		return true
	}
	if c.Lawyer != nil && *c.Lawyer == userID {
		return true
	}
	for _, id := range c.InvolvedCitizens {
		if id == userID {
			return true
		}
	}
	return false
}

// CaseStatusCount is one bucket of the caseload-by-status aggregation
type CaseStatusCount struct {
	Status CaseStatus `json:"status" bson:"_id"`
	Count  int64      `json:"count" bson:"count"`
}

// Counter holds the structure for the counters collection in mongo. One
// document per year backs the case number sequence.
type Counter struct {
	ID  string `json:"_id" bson:"_id"`
	Seq int64  `json:"seq" bson:"seq"`
}

// CaseView is a case with its cross-referenced users resolved at read time
type CaseView struct {
	Case
	ComplainantUser *User `json:"complainantUser,omitempty" bson:"-"`
	LawyerUser      *User `json:"lawyerUser,omitempty" bson:"-"`
}
