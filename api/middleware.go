package api

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtsphere/courtsphere-api/databases"
)

// TokenTTL is how long an issued bearer token stays valid
const TokenTTL = 30 * 24 * time.Hour

// Auth holds the user database needed to resolve token subjects
type Auth struct {
	DB databases.UserDatabase
}

// IssueToken signs a bearer token whose subject is the user's internal id
func IssueToken(userID string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(tokenString string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}

// Middleware authenticates the bearer token, resolves the user behind it and
// stores the user on the request context
func (a Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		tokenString := ""
		authHeader := r.Header.Get("Authorization")
		if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
			tokenString = parts[1]
		}
		if tokenString == "" {
			unauthorized(w, r, fmt.Errorf("missing bearer token"))
			return
		}

		subject, err := parseToken(tokenString)
		if err != nil {
			unauthorized(w, r, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(subject)
		if err != nil {
			unauthorized(w, r, err)
			return
		}

		ctx, cancel := WithQueryTimeout(r.Context())
		defer cancel()

		user, err := a.DB.FindOne(ctx, bson.M{"_id": userID})
		if err != nil {
			unauthorized(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	zap.S().Errorw("unauthorized",
		"url", r.URL,
		"error", err,
	)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}
