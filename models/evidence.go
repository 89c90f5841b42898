package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Evidence holds the structure for the evidence collection in mongo.
// Evidence records are immutable once written; there is no update or delete
// surface for them.
type Evidence struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Case        primitive.ObjectID `json:"case" bson:"case"`
	UploadedBy  primitive.ObjectID `json:"uploadedBy" bson:"uploadedBy"`
	FileName    string             `json:"fileName" bson:"fileName"`
	FileURL     string             `json:"fileUrl" bson:"fileUrl"`
	FileType    string             `json:"fileType" bson:"fileType"`
	Description string             `json:"description" bson:"description"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// EvidenceView is an evidence record with the uploader resolved at read time
type EvidenceView struct {
	Evidence
	Uploader *User `json:"uploader,omitempty" bson:"-"`
}
