package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
)

// Payment exported for testing purposes
type Payment struct {
	DB      databases.PaymentDatabase
	CDB     databases.CaseDatabase
	UDB     databases.UserDatabase
	Metrics *api.Metrics
}

// newTransactionID builds the TXN-XXXXXXXXX ids the ledger records. The id is
// random, not sequence-based; the unique index on transactionId turns the
// theoretical collision into a write failure.
func newTransactionID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TXN-" + raw[:9]
}

// CreatePaymentHandler records a new fee or fine payment in waiting state
func (p Payment) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid payment payload", http.StatusBadRequest, w, errors.New(formatValidationError(err)))
		return
	}
	if !req.Type.Valid() {
		config.ErrorStatus("invalid payment type", http.StatusBadRequest, w, fmt.Errorf("unknown payment type %q", req.Type))
		return
	}

	caseID, err := primitive.ObjectIDFromHex(req.CaseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	payment := models.Payment{
		ID:            primitive.NewObjectID(),
		Case:          caseID,
		User:          user.ID,
		Amount:        req.Amount,
		Type:          req.Type,
		Status:        models.PaymentStatusWaiting,
		TransactionID: newTransactionID(),
		CreatedAt:     primitive.NewDateTimeFromTime(time.Now()),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.InsertOne(ctx, payment); err != nil {
		config.ErrorStatus("failed to create payment", http.StatusBadRequest, w, err)
		return
	}

	if p.Metrics != nil {
		p.Metrics.PaymentsCreated.Inc()
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payment)
}

// PaymentsHandler lists payments: finance and superadmin see the whole
// ledger with case and payer resolved; everyone else sees only their own
// payments with the payer omitted.
func (p Payment) PaymentsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	ledgerView := user.Role == models.RoleFinance || user.Role == models.RoleSuperAdmin
	filter := bson.M{"user": user.ID}
	if ledgerView {
		filter = bson.M{}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	payments, err := p.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get payments", http.StatusNotFound, w, err)
		return
	}

	views := make([]models.PaymentView, 0, len(payments))
	for _, payment := range payments {
		view := models.PaymentView{Payment: payment}
		if ref, err := p.CDB.FindOne(ctx, bson.M{"_id": payment.Case}); err == nil {
			view.CaseRef = ref
		}
		if ledgerView {
			if payer, err := p.UDB.FindOne(ctx, bson.M{"_id": payment.User}); err == nil {
				view.Payer = payer
			}
		}
		views = append(views, view)
	}

	b, err := json.Marshal(views)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VerifyPaymentHandler lets the finance desk approve or reject a waiting
// payment, recording who verified it
func (p Payment) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	paymentID := mux.Vars(r)["payment_id"]

	bID, err := primitive.ObjectIDFromHex(paymentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !req.Status.Valid() || req.Status == models.PaymentStatusWaiting {
		config.ErrorStatus("invalid verification status", http.StatusBadRequest, w, fmt.Errorf("status must be approved or rejected, got %q", req.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.FindOne(ctx, bson.M{"_id": bID}); err != nil {
		config.ErrorStatus("payment not found", http.StatusNotFound, w, err)
		return
	}

	if _, err := p.DB.UpdateOne(ctx, bson.M{"_id": bID}, bson.M{"$set": bson.M{
		"status":     req.Status,
		"verifiedBy": user.ID,
	}}); err != nil {
		config.ErrorStatus("failed to verify payment", http.StatusBadRequest, w, err)
		return
	}

	updated, err := p.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to get updated payment", http.StatusNotFound, w, err)
		return
	}

	zap.S().Infow("payment verified",
		"transactionId", updated.TransactionID,
		"status", updated.Status,
		"verifier", user.UserID,
	)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// CheckoutSessionHandler creates a Stripe checkout session for one of the
// requester's own waiting payments and returns its URL. Settling the session
// does not approve the payment; verification stays with the finance desk.
func (p Payment) CheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	paymentID := mux.Vars(r)["payment_id"]

	bID, err := primitive.ObjectIDFromHex(paymentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	payment, err := p.DB.FindOne(ctx, bson.M{"_id": bID, "user": user.ID})
	if err != nil {
		config.ErrorStatus("payment not found", http.StatusNotFound, w, err)
		return
	}
	if payment.Status != models.PaymentStatusWaiting {
		config.ErrorStatus("payment already verified", http.StatusBadRequest, w, fmt.Errorf("payment status is %q", payment.Status))
		return
	}

	baseURL := os.Getenv("BASE_URL")
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("inr"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Court payment %s (%s)", payment.TransactionID, payment.Type)),
					},
					UnitAmount: stripe.Int64(payment.AmountPaise()),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(baseURL + "/payments?checkout=success"),
		CancelURL:         stripe.String(baseURL + "/payments?checkout=cancelled"),
		ClientReferenceID: stripe.String(payment.TransactionID),
	}

	s, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"sessionId": s.ID,
		"url":       s.URL,
	})
}

// ExportPaymentsHandler streams the full ledger as an XLSX workbook for the
// finance desk
func (p Payment) ExportPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	payments, err := p.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get payments", http.StatusNotFound, w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Payments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Transaction ID", "Case", "Payer", "Amount", "Type", "Status", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	for row, payment := range payments {
		values := []interface{}{
			payment.TransactionID,
			payment.Case.Hex(),
			payment.User.Hex(),
			payment.Amount,
			string(payment.Type),
			string(payment.Status),
			payment.CreatedAt.Time().Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payments-%s.xlsx"`, time.Now().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		zap.S().Errorw("failed to stream payment export", "error", err)
	}
}
