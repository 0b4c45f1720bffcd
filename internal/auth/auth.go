package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
)

// User ID context key
type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// GetUserIDFromContext extracts userID from context
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", errors.New("user ID not found in context")
	}
	return userID, nil
}

// AuthMiddleware extracts user ID from the auth token and puts it in the request context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractTokenFromRequest(r)
		if err != nil {
			log.Printf("Error extracting token: %v", err)
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		userID, err := ExtractUserIDFromJWT(token)
		if err != nil {
			log.Printf("Error extracting user ID from JWT: %v", err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		log.Printf("User authenticated with ID: %s", userID)

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware checks if the user has admin role
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractTokenFromRequest(r)
		if err != nil {
			log.Printf("Error extracting token: %v", err)
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		isAdmin, err := HasAdminRole(token)
		if err != nil {
			log.Printf("Error checking admin role: %v", err)
			http.Error(w, "Failed to validate authorization", http.StatusInternalServerError)
			return
		}

		if !isAdmin {
			http.Error(w, "Forbidden - Admin access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
