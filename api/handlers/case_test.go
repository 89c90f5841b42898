package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/api/handlers"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/databases/mocks"
	"github.com/courtsphere/courtsphere-api/models"
)

func TestCase_CreateCaseHandlerStartsPendingLawyerRequest(t *testing.T) {
	citizen := &models.User{ID: primitive.NewObjectID(), UserID: "citizen-1", Role: models.RoleCitizen}

	db := &MockDatabaseHelper{}
	counters := &mocks.CollectionHelper{}
	cases := &mocks.CollectionHelper{}
	counterResult := &mocks.SingleResultHelper{}

	counterResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Counter)
		arg.Seq = 1
	})
	counters.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(counterResult)
	cases.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "counters").Return(counters)
	db.On("Collection", "cases").Return(cases)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		SEQ: databases.NewSequenceDatabase(db),
	}

	req, _ := http.NewRequest("POST", "/api/v1/cases",
		strings.NewReader(`{"title": "Stolen vehicle", "description": "Car stolen from parking lot", "type": "normal", "lawyerType": "public"}`))
	req = req.WithContext(api.WithUser(req.Context(), citizen))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, fmt.Sprintf("CASE-%d-0001", time.Now().Year()), created.CaseNumber)
	assert.Equal(t, models.CaseStatusOngoing, created.Status)
	assert.Equal(t, models.LawyerRequestPending, created.LawyerRequestStatus)
	assert.Equal(t, citizen.ID, created.Complainant)
}

func TestCase_CreateCaseHandlerWithoutLawyer(t *testing.T) {
	citizen := &models.User{ID: primitive.NewObjectID(), UserID: "citizen-1", Role: models.RoleCitizen}

	db := &MockDatabaseHelper{}
	counters := &mocks.CollectionHelper{}
	cases := &mocks.CollectionHelper{}
	counterResult := &mocks.SingleResultHelper{}

	counterResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Counter)
		arg.Seq = 2
	})
	counters.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(counterResult)
	cases.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "counters").Return(counters)
	db.On("Collection", "cases").Return(cases)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		SEQ: databases.NewSequenceDatabase(db),
	}

	req, _ := http.NewRequest("POST", "/api/v1/cases",
		strings.NewReader(`{"title": "Noise complaint", "description": "Loud construction at night", "type": "normal"}`))
	req = req.WithContext(api.WithUser(req.Context(), citizen))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.LawyerRequestNone, created.LawyerRequestStatus)
	assert.Equal(t, models.LawyerTypeNone, created.LawyerType)
}

func TestCase_CreateCaseHandlerInvalidType(t *testing.T) {
	citizen := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCitizen}

	c := handlers.Case{}

	req, _ := http.NewRequest("POST", "/api/v1/cases",
		strings.NewReader(`{"title": "x", "description": "y", "type": "criminal"}`))
	req = req.WithContext(api.WithUser(req.Context(), citizen))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid case type")
}

func TestCase_CasesHandlerCitizenScope(t *testing.T) {
	citizen := &models.User{ID: primitive.NewObjectID(), UserID: "citizen-1", Role: models.RoleCitizen}
	ownCase := models.Case{
		ID:          primitive.NewObjectID(),
		CaseNumber:  "CASE-2026-0001",
		Complainant: citizen.ID,
		Status:      models.CaseStatusOngoing,
	}

	db := &MockDatabaseHelper{}
	cases := &mocks.CollectionHelper{}
	users := &mocks.CollectionHelper{}
	caseCursor := &mocks.CursorHelper{}
	userCursor := &mocks.CursorHelper{}

	caseCursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Case)
		*arg = []models.Case{ownCase}
	})
	caseCursor.On("Close", mock.Anything).Return(nil)
	userCursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.User)
		*arg = []models.User{*citizen}
	})
	userCursor.On("Close", mock.Anything).Return(nil)
	cases.On("Find", mock.Anything, mock.Anything).Return(caseCursor, nil)
	users.On("Find", mock.Anything, mock.Anything).Return(userCursor, nil)
	db.On("Collection", "cases").Return(cases)
	db.On("Collection", "users").Return(users)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	req, _ := http.NewRequest("GET", "/api/v1/cases", nil)
	req = req.WithContext(api.WithUser(req.Context(), citizen))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var views []models.CaseView
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &views))
	assert.Len(t, views, 1)
	assert.Equal(t, "CASE-2026-0001", views[0].CaseNumber)
	if assert.NotNil(t, views[0].ComplainantUser) {
		assert.Equal(t, "citizen-1", views[0].ComplainantUser.UserID)
	}
}

func TestCase_LawyerRequestHandlerAccept(t *testing.T) {
	lawyer := &models.User{ID: primitive.NewObjectID(), UserID: "lawyer-7", Role: models.RoleLawyer}
	caseID := primitive.NewObjectID()

	db := &MockDatabaseHelper{}
	cases := &mocks.CollectionHelper{}
	updateResult := &mocks.SingleResultHelper{}

	updateResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = caseID
		(*arg).CaseNumber = "CASE-2026-0009"
		(*arg).LawyerRequestStatus = models.LawyerRequestApproved
		(*arg).Lawyer = &lawyer.ID
	})
	cases.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updateResult)
	db.On("Collection", "cases").Return(cases)

	c := handlers.Case{DB: databases.NewCaseDatabase(db)}

	req, _ := http.NewRequest("PUT", "/api/v1/cases/"+caseID.Hex()+"/lawyer",
		strings.NewReader(`{"action": "accept"}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req = req.WithContext(api.WithUser(req.Context(), lawyer))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.LawyerRequestHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var updated models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, models.LawyerRequestApproved, updated.LawyerRequestStatus)
	assert.Equal(t, &lawyer.ID, updated.Lawyer)
}

func TestCase_LawyerRequestHandlerAlreadyResolved(t *testing.T) {
	lawyer := &models.User{ID: primitive.NewObjectID(), UserID: "lawyer-8", Role: models.RoleLawyer}
	caseID := primitive.NewObjectID()

	db := &MockDatabaseHelper{}
	cases := &mocks.CollectionHelper{}
	updateResult := &mocks.SingleResultHelper{}
	findResult := &mocks.SingleResultHelper{}

	// the compare-and-swap misses because the request is no longer pending
	updateResult.On("Decode", mock.Anything).Return(mongoNoDocuments())
	findResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = caseID
		(*arg).LawyerRequestStatus = models.LawyerRequestApproved
	})
	cases.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updateResult)
	cases.On("FindOne", mock.Anything, mock.Anything).Return(findResult)
	db.On("Collection", "cases").Return(cases)

	c := handlers.Case{DB: databases.NewCaseDatabase(db)}

	req, _ := http.NewRequest("PUT", "/api/v1/cases/"+caseID.Hex()+"/lawyer",
		strings.NewReader(`{"action": "accept"}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req = req.WithContext(api.WithUser(req.Context(), lawyer))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.LawyerRequestHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, `{"response": "lawyer request already resolved, invalid lawyer request transition approved -> approved"}`, rr.Body.String())
}

func TestCase_LawyerRequestHandlerCaseNotFound(t *testing.T) {
	lawyer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleLawyer}
	caseID := primitive.NewObjectID()

	db := &MockDatabaseHelper{}
	cases := &mocks.CollectionHelper{}
	updateResult := &mocks.SingleResultHelper{}
	findResult := &mocks.SingleResultHelper{}

	updateResult.On("Decode", mock.Anything).Return(mongoNoDocuments())
	findResult.On("Decode", mock.Anything).Return(mongoNoDocuments())
	cases.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updateResult)
	cases.On("FindOne", mock.Anything, mock.Anything).Return(findResult)
	db.On("Collection", "cases").Return(cases)

	c := handlers.Case{DB: databases.NewCaseDatabase(db)}

	req, _ := http.NewRequest("PUT", "/api/v1/cases/"+caseID.Hex()+"/lawyer",
		strings.NewReader(`{"action": "reject"}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req = req.WithContext(api.WithUser(req.Context(), lawyer))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.LawyerRequestHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_UpdateCaseHandlerBadHex(t *testing.T) {
	court := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCourt}

	c := handlers.Case{}

	req, _ := http.NewRequest("PUT", "/api/v1/cases/1234", strings.NewReader(`{}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": "1234"})
	req = req.WithContext(api.WithUser(req.Context(), court))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "failed to get objectID from Hex, the provided hex string is not a valid ObjectID"}`, rr.Body.String())
}

func TestCase_UpdateCaseHandlerTerminalStatusBumpsLawyerCounters(t *testing.T) {
	court := &models.User{ID: primitive.NewObjectID(), UserID: "court-1", Role: models.RoleCourt}
	caseID := primitive.NewObjectID()
	lawyerID := primitive.NewObjectID()

	db := &MockDatabaseHelper{}
	cases := &mocks.CollectionHelper{}
	users := &mocks.CollectionHelper{}
	findResult := &mocks.SingleResultHelper{}

	callCount := 0
	findResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Case)
		(*arg).ID = caseID
		(*arg).CaseNumber = "CASE-2026-0003"
		(*arg).Lawyer = &lawyerID
		if callCount == 0 {
			(*arg).Status = models.CaseStatusOngoing
		} else {
			(*arg).Status = models.CaseStatusJudgementGiven
		}
		callCount++
	})
	cases.On("FindOne", mock.Anything, mock.Anything).Return(findResult)
	cases.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "cases").Return(cases)
	db.On("Collection", "users").Return(users)

	c := handlers.Case{
		DB:  databases.NewCaseDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	req, _ := http.NewRequest("PUT", "/api/v1/cases/"+caseID.Hex(),
		strings.NewReader(`{"status": "judgement given"}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	req = req.WithContext(api.WithUser(req.Context(), court))

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	// the lawyer's casesHandled and casesWon counters were incremented
	users.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)

	var updated models.Case
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, models.CaseStatusJudgementGiven, updated.Status)
}
