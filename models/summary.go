package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseSummary holds the structure for the casesummaries collection in mongo.
// There is one summary per case, overwritten wholesale on each save; no
// version history is retained.
type CaseSummary struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Case           primitive.ObjectID `json:"case" bson:"case"`
	SummaryContent string             `json:"summaryContent" bson:"summaryContent"`
	FinalJudgement string             `json:"finalJudgement" bson:"finalJudgement"`
	CourtOfficial  primitive.ObjectID `json:"courtOfficial" bson:"courtOfficial"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// CaseSummaryView is a summary with the recording official resolved at read time
type CaseSummaryView struct {
	CaseSummary
	Official *User `json:"official,omitempty" bson:"-"`
}
