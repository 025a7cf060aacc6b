package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/newmedev/mealreview-backend/internal/config"
)

// Identity is the profile resolved from a verified Supabase credential.
type Identity struct {
	Subject  string
	Email    string
	FullName string
	Name     string
}

// TokenVerifier validates a bearer token against Supabase and returns the
// identity it carries.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// NewTokenVerifier picks the verification strategy from config: local HS256
// verification when the project JWT secret is available, otherwise a remote
// call to the Supabase Auth API. Returns nil when neither is configured,
// which disables all protected endpoints.
func NewTokenVerifier(cfg *config.Config) TokenVerifier {
	if cfg.SupabaseJWTSecret != "" {
		return &JWTVerifier{secret: []byte(cfg.SupabaseJWTSecret)}
	}
	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		return NewAuthAPIVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}
	return nil
}

// JWTVerifier checks Supabase access tokens locally. Supabase signs them
// HS256 with the project JWT secret, and the profile claims needed for user
// sync ride inside the token.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing sub claim")
	}

	ident := &Identity{Subject: sub}
	ident.Email, _ = claims["email"].(string)
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		ident.FullName, _ = meta["full_name"].(string)
		ident.Name, _ = meta["name"].(string)
	}
	return ident, nil
}

// AuthAPIVerifier validates tokens remotely via GET /auth/v1/user on the
// Supabase Auth API. Used when only the anon key is configured; the provider
// is then the single source of truth for token validity.
type AuthAPIVerifier struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
}

func NewAuthAPIVerifier(baseURL, anonKey string) *AuthAPIVerifier {
	return &AuthAPIVerifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		anonKey:    anonKey,
	}
}

func (v *AuthAPIVerifier) Verify(token string) (*Identity, error) {
	req, err := http.NewRequest(http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("apikey", v.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Supabase auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Supabase auth returned status %d", resp.StatusCode)
	}

	var profile struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName string `json:"full_name"`
			Name     string `json:"name"`
		} `json:"user_metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if profile.ID == "" {
		return nil, errors.New("auth response missing user id")
	}

	return &Identity{
		Subject:  profile.ID,
		Email:    profile.Email,
		FullName: profile.UserMetadata.FullName,
		Name:     profile.UserMetadata.Name,
	}, nil
}
