package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
)

// Case exported for testing purposes
type Case struct {
	DB      databases.CaseDatabase
	UDB     databases.UserDatabase
	SEQ     databases.SequenceDatabase
	Metrics *api.Metrics
}

// CreateCaseHandler registers a new case. The case number is drawn from the
// atomic per-year sequence and the lawyer request starts pending whenever a
// lawyer type other than "none" was asked for.
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req models.RegisterCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid case payload", http.StatusBadRequest, w, errors.New(formatValidationError(err)))
		return
	}
	if !req.Type.Valid() {
		config.ErrorStatus("invalid case type", http.StatusBadRequest, w, fmt.Errorf("unknown case type %q", req.Type))
		return
	}
	if req.LawyerType == "" {
		req.LawyerType = models.LawyerTypeNone
	}
	if !req.LawyerType.Valid() {
		config.ErrorStatus("invalid lawyer type", http.StatusBadRequest, w, fmt.Errorf("unknown lawyer type %q", req.LawyerType))
		return
	}

	involved := make([]primitive.ObjectID, 0, len(req.InvolvedCitizens))
	for _, raw := range req.InvolvedCitizens {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			config.ErrorStatus("invalid involved citizen id", http.StatusBadRequest, w, err)
			return
		}
		involved = append(involved, id)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseNumber, err := c.SEQ.NextCaseNumber(ctx, time.Now().Year())
	if err != nil {
		config.ErrorStatus("failed to generate case number", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	newCase := models.Case{
		ID:                  primitive.NewObjectID(),
		CaseNumber:          caseNumber,
		Title:               sanitizer.Sanitize(req.Title),
		Description:         sanitizer.Sanitize(req.Description),
		Type:                req.Type,
		Status:              models.CaseStatusOngoing,
		Complainant:         user.ID,
		AccusedDetails:      req.AccusedDetails,
		InvolvedCitizens:    involved,
		LawyerRequestStatus: req.LawyerType.InitialRequestStatus(),
		LawyerType:          req.LawyerType,
		Hearings:            []models.Hearing{},
		CreatedAt:           now,
	}

	if _, err := c.DB.InsertOne(ctx, newCase); err != nil {
		config.ErrorStatus("failed to create case", http.StatusBadRequest, w, err)
		return
	}

	if c.Metrics != nil {
		c.Metrics.CasesRegistered.Inc()
	}
	zap.S().Infow("case registered",
		"caseNumber", newCase.CaseNumber,
		"complainant", user.UserID,
	)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newCase)
}

// CasesHandler lists cases visible to the requester, partitioned by role:
// court, superadmin and finance see everything; lawyers see their own cases
// plus open public requests; citizens and police see cases they are the
// complainant of or listed on.
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var filter bson.M
	switch user.Role {
	case models.RoleCourt, models.RoleSuperAdmin, models.RoleFinance:
		filter = bson.M{}
	case models.RoleLawyer:
		filter = bson.M{"$or": []bson.M{
			{"lawyer": user.ID},
			{"lawyerRequestStatus": models.LawyerRequestPending, "lawyerType": models.LawyerTypePublic},
		}}
	default:
		filter = bson.M{"$or": []bson.M{
			{"complainant": user.ID},
			{"involvedCitizens": user.ID},
		}}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusNotFound, w, err)
		return
	}

	views, err := c.populate(ctx, cases)
	if err != nil {
		config.ErrorStatus("failed to resolve case references", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(views)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// populate resolves complainant and lawyer references into denormalized case
// views with a single users lookup
func (c Case) populate(ctx context.Context, cases []models.Case) ([]models.CaseView, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, cs := range cases {
		idSet[cs.Complainant] = struct{}{}
		if cs.Lawyer != nil {
			idSet[*cs.Lawyer] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	usersByID := map[primitive.ObjectID]*models.User{}
	if len(ids) > 0 {
		users, err := c.UDB.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		for i := range users {
			usersByID[users[i].ID] = &users[i]
		}
	}

	views := make([]models.CaseView, 0, len(cases))
	for _, cs := range cases {
		view := models.CaseView{Case: cs}
		view.ComplainantUser = usersByID[cs.Complainant]
		if cs.Lawyer != nil {
			view.LawyerUser = usersByID[*cs.Lawyer]
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateCaseHandler applies a partial patch to a case: status, judgement
// and/or one appended hearing entry. Absent fields are untouched. Moving a
// case with an assigned lawyer to a terminal status bumps the lawyer's
// caseload counters.
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	caseID := mux.Vars(r)["case_id"]

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req models.UpdateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		config.ErrorStatus("invalid case status", http.StatusBadRequest, w, fmt.Errorf("unknown case status %q", *req.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := c.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	update := bson.M{}
	set := bson.M{}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.Judgement != nil {
		req.Judgement.Summary = sanitizer.Sanitize(req.Judgement.Summary)
		set["judgement"] = req.Judgement
	}
	if req.Hearing != nil {
		req.Hearing.Update = sanitizer.Sanitize(req.Hearing.Update)
		if req.Hearing.UploadedBy == "" {
			req.Hearing.UploadedBy = user.UserID
		}
		update["$push"] = bson.M{"hearings": req.Hearing}
	}
	if len(set) > 0 {
		update["$set"] = set
	}

	if len(update) > 0 {
		if _, err := c.DB.UpdateOne(ctx, bson.M{"_id": bID}, update); err != nil {
			config.ErrorStatus("failed to update case", http.StatusBadRequest, w, err)
			return
		}
	}

	// closing a represented case feeds the lawyer's track record
	if req.Status != nil && req.Status.Terminal() && !existing.Status.Terminal() && existing.Lawyer != nil {
		inc := bson.M{"casesHandled": 1}
		if *req.Status == models.CaseStatusJudgementGiven {
			inc["casesWon"] = 1
		}
		if _, err := c.UDB.UpdateOne(ctx, bson.M{"_id": existing.Lawyer}, bson.M{"$inc": inc}); err != nil {
			zap.S().Errorw("failed to update lawyer counters",
				"case", existing.CaseNumber,
				"lawyer", existing.Lawyer.Hex(),
				"error", err,
			)
		}
	}

	updated, err := c.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to get updated case", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// LawyerRequestHandler resolves a pending lawyer request. Accept binds the
// requesting lawyer to the case; anything else rejects the request. Both
// paths are guarded by a compare-and-swap on the pending status, so the
// second of two racing accepts gets a conflict instead of overwriting.
func (c Case) LawyerRequestHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())
	caseID := mux.Vars(r)["case_id"]

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req models.LawyerActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	next := models.LawyerRequestRejected
	set := bson.M{"lawyerRequestStatus": models.LawyerRequestRejected}
	if req.Action == "accept" {
		next = models.LawyerRequestApproved
		set = bson.M{
			"lawyerRequestStatus": models.LawyerRequestApproved,
			"lawyer":              user.ID,
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	after := options.After
	// the filter is the transition guard: only a pending request can move
	updated, err := c.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": bID, "lawyerRequestStatus": models.LawyerRequestPending},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			config.ErrorStatus("failed to update lawyer request", http.StatusInternalServerError, w, err)
			return
		}
		existing, findErr := c.DB.FindOne(ctx, bson.M{"_id": bID})
		if findErr != nil {
			config.ErrorStatus("case not found", http.StatusNotFound, w, findErr)
			return
		}
		config.ErrorStatus("lawyer request already resolved", http.StatusConflict, w,
			models.ErrInvalidTransition{From: existing.LawyerRequestStatus, To: next})
		return
	}

	zap.S().Infow("lawyer request resolved",
		"caseNumber", updated.CaseNumber,
		"status", updated.LawyerRequestStatus,
		"lawyer", user.UserID,
	)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}
