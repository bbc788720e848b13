package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/config"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/models"
)

// MiddlewareDB is a struct that holds the database
type MiddlewareDB struct {
	DB databases.UserDatabase
}

var authenticator auth.Authenticator
var cache store.Cache

// Middleware authenticates the request and stores the user in its context
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// CreateToken returns a bearer token for the user authenticated with basic auth
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		config.ErrorStatus("basic auth failed", http.StatusUnauthorized, w, errors.New("no authenticated user"))
		return
	}

	// basic credentials are cached, so the session is reopened here rather than in ValidateUser
	ctx, cancel := WithQueryTimeout(r.Context())
	defer cancel()
	if err := m.DB.InsertOne(ctx, models.User{Email: user.UserName(), ID: user.ID()}); err != nil {
		config.ErrorStatus("failed to store user", http.StatusInternalServerError, w, err)
		return
	}

	token := uuid.New().String()
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Append(tokenStrategy, token, user, r); err != nil {
		config.ErrorStatus("failed to store token", http.StatusInternalServerError, w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"_id":   user.ID(),
		"email": user.UserName(),
	})
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24)
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser accepts any email with a non-empty password. This is a demo
// login: the first login of an email creates its user, later logins reuse it.
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	user, err := m.DB.FindByEmail(ctx, email)
	var nf *models.NotFoundError
	switch {
	case errors.As(err, &nf):
		user = &models.User{Email: email, ID: uuid.New().String()}
		if err := m.DB.InsertOne(ctx, *user); err != nil {
			return nil, fmt.Errorf("failed to store user: %w", err)
		}
		zap.S().Infow("created demo user", "email", email, "id", user.ID)
	case err != nil:
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return auth.NewDefaultUser(user.Email, user.ID, nil, nil), nil
}

// RevokeToken revokes a token and clears the user's session
func (m MiddlewareDB) RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if reqToken == "" {
		config.ErrorStatus("failed to revoke token", http.StatusBadRequest, w, errors.New("missing bearer token"))
		return
	}

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Revoke(tokenStrategy, reqToken, r); err != nil {
		config.ErrorStatus("failed to revoke token", http.StatusInternalServerError, w, err)
		return
	}

	if clientID := ClientID(r.Context()); clientID != "" {
		ctx, cancel := WithQueryTimeout(r.Context())
		defer cancel()
		if err := m.DB.DeleteOne(ctx, clientID); err != nil {
			zap.S().Warnw("failed to clear user session", "client", clientID, "error", err)
		}
	}
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
