package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"tripledger/internal/models"
	"tripledger/internal/repository"
	"tripledger/internal/security"
	"tripledger/internal/validation"
)

var ErrInvalidCredentials = wrap("invalid email or password", ErrNotAllowed)

// AuthService handles account registration and login
type AuthService struct {
	userRepo repository.UserStore
	tokens   *security.TokenManager
	oauth    *oauth2.Config
}

// NewAuthService creates a new auth service. oauthCfg may be nil when
// Google sign-in is not configured.
func NewAuthService(userRepo repository.UserStore, tokens *security.TokenManager, oauthCfg *oauth2.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		oauth:    oauthCfg,
	}
}

// Register creates a new user account and returns it with a signed
// bearer token
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, ErrValidation)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, ErrValidation)
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, ErrValidation)
	}

	existing, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies the credentials and returns the user with a signed
// bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !security.VerifyPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// GoogleAuthURL returns the consent page URL for the given state
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", fmt.Errorf("google sign-in is not configured: %w", ErrValidation)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// LoginWithGoogle exchanges the authorization code, fetches the Google
// profile and finds or creates the matching account
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*models.User, string, error) {
	if s.oauth == nil {
		return nil, "", fmt.Errorf("google sign-in is not configured: %w", ErrValidation)
	}

	oauthToken, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := fetchGoogleUser(ctx, oauthToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.findOrCreateOAuthUser(ctx, info)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

type oauthUserInfo struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func fetchGoogleUser(ctx context.Context, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: status %d", resp.StatusCode)
	}

	var info oauthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if info.Subject == "" || info.Email == "" {
		return oauthUserInfo{}, fmt.Errorf("incomplete Google user info")
	}
	return info, nil
}

// findOrCreateOAuthUser matches by OAuth subject first, then by email,
// and finally creates a fresh account.
func (s *AuthService) findOrCreateOAuthUser(ctx context.Context, info oauthUserInfo) (*models.User, error) {
	user, err := s.userRepo.ByOAuthSubject(ctx, info.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	email := strings.ToLower(info.Email)
	user, err = s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// OAuth accounts get an unguessable placeholder so password login
	// stays impossible until one is set explicitly.
	hash, err := security.HashPassword(security.RandomSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	subject := info.Subject
	user = &models.User{
		Email:        email,
		Name:         info.Name,
		PasswordHash: hash,
		OAuthSubject: &subject,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// VerifyToken resolves a bearer token to its claims
func (s *AuthService) VerifyToken(tokenStr string) (*security.TokenClaims, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrNotAllowed)
	}
	return claims, nil
}
