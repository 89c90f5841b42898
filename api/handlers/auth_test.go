package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtsphere/courtsphere-api/api/handlers"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/databases/mocks"
	"github.com/courtsphere/courtsphere-api/models"
)

type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

func mongoNoDocuments() error {
	return mongo.ErrNoDocuments
}

func TestAuth_LoginHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	userID := primitive.NewObjectID()

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
		(*arg).UserID = "citizen-1"
		(*arg).Name = "Asha Rao"
		(*arg).Role = models.RoleCitizen
		(*arg).Password = string(hash)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	a := handlers.Auth{DB: databases.NewUserDatabase(db)}

	req, _ := http.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"userId": "citizen-1", "password": "secret123"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.AuthResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, userID.Hex(), resp.ID)
	assert.Equal(t, "citizen-1", resp.UserID)
	assert.Equal(t, models.RoleCitizen, resp.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestAuth_LoginHandlerWrongPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).UserID = "citizen-1"
		(*arg).Password = string(hash)
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	a := handlers.Auth{DB: databases.NewUserDatabase(db)}

	req, _ := http.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"userId": "citizen-1", "password": "wrong"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `{"response": "invalid credentials, password mismatch"}`, rr.Body.String())
}

func TestAuth_LoginHandlerUnknownUser(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongoNoDocuments())
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	a := handlers.Auth{DB: databases.NewUserDatabase(db)}

	req, _ := http.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"userId": "nobody", "password": "whatever"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `{"response": "invalid credentials, no matching user"}`, rr.Body.String())
}

func TestAuth_LoginHandlerMissingFields(t *testing.T) {
	a := handlers.Auth{}

	req, _ := http.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"userId": "citizen-1"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.LoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuth_RegisterHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongoNoDocuments())
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "users").Return(conn)

	a := handlers.Auth{DB: databases.NewUserDatabase(db)}

	req, _ := http.NewRequest("POST", "/api/v1/auth/register",
		strings.NewReader(`{"userId": "lawyer-7", "name": "Meera Iyer", "password": "secret123", "role": "lawyer", "phone": "9876543210", "specialization": "criminal"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp models.AuthResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "lawyer-7", resp.UserID)
	assert.Equal(t, models.RoleLawyer, resp.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestAuth_RegisterHandlerDuplicateUser(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	// the userId already resolves to a user
	singleResultHelper.On("Decode", mock.Anything).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	a := handlers.Auth{DB: databases.NewUserDatabase(db)}

	req, _ := http.NewRequest("POST", "/api/v1/auth/register",
		strings.NewReader(`{"userId": "citizen-1", "name": "Asha Rao", "password": "secret123", "role": "citizen", "phone": "9876543210"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "user already exists, duplicate userId"}`, rr.Body.String())
}

func TestAuth_RegisterHandlerLookupErrorDoesNotRegister(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	// a failed duplicate check must not be mistaken for a free userId
	singleResultHelper.On("Decode", mock.Anything).Return(errors.New("connection reset"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(conn)

	a := handlers.Auth{DB: databases.NewUserDatabase(db)}

	req, _ := http.NewRequest("POST", "/api/v1/auth/register",
		strings.NewReader(`{"userId": "citizen-1", "name": "Asha Rao", "password": "secret123", "role": "citizen", "phone": "9876543210"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, `{"response": "failed to check existing user, connection reset"}`, rr.Body.String())
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAuth_RegisterHandlerUnknownRole(t *testing.T) {
	a := handlers.Auth{}

	req, _ := http.NewRequest("POST", "/api/v1/auth/register",
		strings.NewReader(`{"userId": "x", "name": "X", "password": "secret123", "role": "judge", "phone": "9876543210"}`))

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid role")
}
