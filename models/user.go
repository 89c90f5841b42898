package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User holds the structure for the users collection in mongo
type User struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	UserID         string             `json:"userId" bson:"userId"`
	Password       string             `json:"-" bson:"password"`
	Role           Role               `json:"role" bson:"role"`
	Name           string             `json:"name" bson:"name"`
	Phone          string             `json:"phone" bson:"phone"`
	DOB            primitive.DateTime `json:"dob,omitempty" bson:"dob,omitempty"`
	Aadhaar        string             `json:"aadhaar,omitempty" bson:"aadhaar,omitempty"`
	Specialization string             `json:"specialization,omitempty" bson:"specialization,omitempty"`

	// lawyer-only fields
	Availability bool `json:"availability" bson:"availability"`
	CasesHandled int  `json:"casesHandled" bson:"casesHandled"`
	CasesWon     int  `json:"casesWon" bson:"casesWon"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
