package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtsphere/courtsphere-api/api"
	"github.com/courtsphere/courtsphere-api/config"
	"github.com/courtsphere/courtsphere-api/databases"
	"github.com/courtsphere/courtsphere-api/models"
)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

// ProfileHandler returns the authenticated user's own profile
func (u User) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateProfileHandler lets a user change their own name, phone and password.
// The password hash is recomputed only when a new password is supplied.
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := api.UserFromContext(r.Context())

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
			return
		}
		set["password"] = string(hashedPassword)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if len(set) > 0 {
		if _, err := u.DB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
			config.ErrorStatus("failed to update profile", http.StatusBadRequest, w, err)
			return
		}
	}

	updated, err := u.DB.FindOne(ctx, bson.M{"_id": user.ID})
	if err != nil {
		config.ErrorStatus("failed to get updated profile", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// LawyersHandler returns the lawyer directory
func (u User) LawyersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	lawyers, err := u.DB.Find(ctx, bson.M{"role": models.RoleLawyer})
	if err != nil {
		config.ErrorStatus("failed to get lawyers", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(lawyers)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
