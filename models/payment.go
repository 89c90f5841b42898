package models

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentType classifies what a payment is for
type PaymentType string

// Payment types
const (
	PaymentTypeRegistration PaymentType = "registration"
	PaymentTypeCourt        PaymentType = "court"
	PaymentTypeLawyer       PaymentType = "lawyer"
	PaymentTypeMisc         PaymentType = "misc"
	PaymentTypeFine         PaymentType = "fine"
)

// Valid reports whether t is a known payment type
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeRegistration, PaymentTypeCourt, PaymentTypeLawyer, PaymentTypeMisc, PaymentTypeFine:
		return true
	}
	return false
}

// PaymentStatus is the verification state of a payment
type PaymentStatus string

// Payment statuses
const (
	PaymentStatusWaiting  PaymentStatus = "waiting"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusWaiting || s == PaymentStatusApproved || s == PaymentStatusRejected
}

// Payment holds the structure for the payments collection in mongo
type Payment struct {
	ID            primitive.ObjectID  `json:"_id" bson:"_id"`
	Case          primitive.ObjectID  `json:"case" bson:"case"`
	User          primitive.ObjectID  `json:"user" bson:"user"`
	Amount        float64             `json:"amount" bson:"amount"`
	Type          PaymentType         `json:"type" bson:"type"`
	Status        PaymentStatus       `json:"status" bson:"status"`
	TransactionID string              `json:"transactionId" bson:"transactionId"`
	VerifiedBy    *primitive.ObjectID `json:"verifiedBy,omitempty" bson:"verifiedBy,omitempty"`
	CreatedAt     primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// AmountPaise is the rupee amount in integer paise, rounded to the nearest
// paisa so float representations like 19.99 never truncate short.
func (p *Payment) AmountPaise() int64 {
	return int64(math.Round(p.Amount * 100))
}

// PaymentView is a payment with its cross-referenced case and payer resolved
// at read time. Payer is omitted when the requester is the payer.
type PaymentView struct {
	Payment
	CaseRef *Case `json:"caseRef,omitempty" bson:"-"`
	Payer   *User `json:"payer,omitempty" bson:"-"`
}
