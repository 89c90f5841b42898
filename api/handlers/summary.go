package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
)

// Summary exported for testing purposes
type Summary struct {
	DB  databases.SummaryDatabase
	UDB databases.UserDatabase
}

// UpsertSummaryHandler creates or wholesale-overwrites the one summary a
// case carries; no prior version is retained
func (s Summary) UpsertSummaryHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req models.UpsertSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid summary payload", http.StatusBadRequest, w, errors.New(formatValidationError(err)))
		return
	}

	caseID, err := primitive.ObjectIDFromHex(req.CaseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	summaryContent := sanitizer.Sanitize(req.SummaryContent)
	finalJudgement := sanitizer.Sanitize(req.FinalJudgement)

	existing, err := s.DB.FindOne(ctx, bson.M{"case": caseID})
	if err != nil && err != mongo.ErrNoDocuments {
		config.ErrorStatus("failed to get summary", http.StatusInternalServerError, w, err)
		return
	}
	// only a confirmed absence creates; a case carries at most one summary
	if err != nil {
		summary := models.CaseSummary{
			ID:             primitive.NewObjectID(),
			Case:           caseID,
			SummaryContent: summaryContent,
			FinalJudgement: finalJudgement,
			CourtOfficial:  user.ID,
			UpdatedAt:      now,
		}
		if _, err := s.DB.InsertOne(ctx, summary); err != nil {
			config.ErrorStatus("failed to create summary", http.StatusBadRequest, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(summary)
		return
	}

	if _, err := s.DB.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
		"summaryContent": summaryContent,
		"finalJudgement": finalJudgement,
		"courtOfficial":  user.ID,
		"updatedAt":      now,
	}}); err != nil {
		config.ErrorStatus("failed to update summary", http.StatusBadRequest, w, err)
		return
	}

	existing.SummaryContent = summaryContent
	existing.FinalJudgement = finalJudgement
	existing.CourtOfficial = user.ID
	existing.UpdatedAt = now

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(existing)
}

// SummaryByCaseHandler returns the summary recorded for a case. A case may
// legitimately have no summary yet pre-verdict; that is a 404, distinct from
// the case itself missing.
func (s Summary) SummaryByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	summary, err := s.DB.FindOne(ctx, bson.M{"case": bID})
	if err != nil {
		config.ErrorStatus("summary not found", http.StatusNotFound, w, err)
		return
	}

	view := models.CaseSummaryView{CaseSummary: *summary}
	if official, err := s.UDB.FindOne(ctx, bson.M{"_id": summary.CourtOfficial}); err == nil {
		view.Official = official
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(view)
}
