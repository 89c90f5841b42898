package search

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
)

// CaseSearch looks up cases by case number or free text
type CaseSearch struct {
	DB databases.CaseDatabase
}

// CaseSearchHandler resolves ?case_number= exactly or ?q= against the text
// index on title and description. Results are limited to what the requester's
// role could see through the case listing.
func (c CaseSearch) CaseSearchHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	caseNumber := r.URL.Query().Get("case_number")
	query := r.URL.Query().Get("q")

	zap.S().Debugf("case_number: %v, q: %v", caseNumber, query)

	var criteria []bson.M
	if caseNumber != "" {
		criteria = append(criteria, bson.M{"caseNumber": caseNumber})
	}
	if query != "" {
		criteria = append(criteria, bson.M{"$text": bson.M{"$search": query}})
	}
	if len(criteria) == 0 {
		config.ErrorStatus("missing search terms", http.StatusBadRequest, w, nil)
		return
	}

	switch user.Role {
	case models.RoleCourt, models.RoleSuperAdmin, models.RoleFinance:
		// unscoped
	case models.RoleLawyer:
		criteria = append(criteria, bson.M{"$or": []bson.M{
			{"lawyer": user.ID},
			{"lawyerRequestStatus": models.LawyerRequestPending, "lawyerType": models.LawyerTypePublic},
		}})
	default:
		criteria = append(criteria, bson.M{"$or": []bson.M{
			{"complainant": user.ID},
			{"involvedCitizens": user.ID},
		}})
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, bson.M{"$and": criteria})
	if err != nil {
		config.ErrorStatus("failed to search cases", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Case{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
