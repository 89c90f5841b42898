package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
)

// Auth exported for testing purposes
type Auth struct {
	DB databases.UserDatabase
}

// LoginHandler authenticates a user by userId and password and returns a
// fresh bearer token
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid login payload", http.StatusBadRequest, w, errors.New(formatValidationError(err)))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := a.DB.FindOne(ctx, bson.M{"userId": req.UserID})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, fmt.Errorf("no matching user"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, fmt.Errorf("password mismatch"))
		return
	}

	token, err := api.IssueToken(user.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.AuthResponse{
		ID:     user.ID.Hex(),
		UserID: user.UserID,
		Name:   user.Name,
		Role:   user.Role,
		Token:  token,
	})
}

// RegisterHandler creates a new user and returns a fresh bearer token
func (a Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid registration payload", http.StatusBadRequest, w, errors.New(formatValidationError(err)))
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := a.DB.FindOne(ctx, bson.M{"userId": req.UserID})
	if err != nil && err != mongo.ErrNoDocuments {
		config.ErrorStatus("failed to check existing user", http.StatusInternalServerError, w, err)
		return
	}
	if existing != nil {
		config.ErrorStatus("user already exists", http.StatusBadRequest, w, fmt.Errorf("duplicate userId"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	user := models.User{
		ID:             primitive.NewObjectID(),
		UserID:         req.UserID,
		Password:       string(hashedPassword),
		Role:           role,
		Name:           req.Name,
		Phone:          req.Phone,
		Aadhaar:        req.Aadhaar,
		Specialization: req.Specialization,
		Availability:   true,
		CreatedAt:      primitive.NewDateTimeFromTime(time.Now()),
	}
	if req.DOB != "" {
		if dob, err := time.Parse("2006-01-02", req.DOB); err == nil {
			user.DOB = primitive.NewDateTimeFromTime(dob)
		}
	}

	if _, err := a.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to insert user", http.StatusBadRequest, w, err)
		return
	}

	token, err := api.IssueToken(user.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.AuthResponse{
		ID:     user.ID.Hex(),
		UserID: user.UserID,
		Name:   user.Name,
		Role:   user.Role,
		Token:  token,
	})
}
