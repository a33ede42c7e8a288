package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gymdesk/membership-app/internal/auth"
	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrStateMismatch   = errors.New("sign-in state does not match")
	ErrUnauthenticated = errors.New("not signed in")
)

const defaultSessionTTL = 12 * time.Hour

// IdentityProvider is the OIDC provider the console signs in against.
type IdentityProvider interface {
	AuthURL(state string) (string, string, error)
	Exchange(ctx context.Context, code, codeVerifier string) (*auth.Tokens, error)
	Profile(idToken string) (domain.UserProfile, error)
	LogoutURL(returnTo string) string
}

// TokenSealer encrypts tokens kept with a session.
type TokenSealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// LoginStart is where to send the browser and the flow to remember until the
// provider calls back.
type LoginStart struct {
	RedirectURL string
	Flow        auth.Flow
}

// ActiveSession is a resolved session with its access token unsealed.
type ActiveSession struct {
	Session     *domain.Session
	AccessToken string
}

type SessionService interface {
	BeginLogin(ctx context.Context, returnTo string) (*LoginStart, error)
	// CompleteLogin finishes the code flow started by BeginLogin and stores a
	// new session.
	CompleteLogin(ctx context.Context, flow auth.Flow, state, code string) (*domain.Session, error)
	Resolve(ctx context.Context, sessionID string) (*ActiveSession, error)
	// SignOut deletes the session and returns the provider logout URL.
	SignOut(ctx context.Context, sessionID string) (string, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	sessionRepo   repository.SessionRepository
	provider      IdentityProvider
	sealer        TokenSealer
	ttl           time.Duration
	postLoginPath string
	publicURL     string
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	provider IdentityProvider,
	sealer TokenSealer,
	ttl time.Duration,
	postLoginPath, publicURL string,
) SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if postLoginPath == "" {
		postLoginPath = "/clientes"
	}
	return &sessionService{
		sessionRepo:   sessionRepo,
		provider:      provider,
		sealer:        sealer,
		ttl:           ttl,
		postLoginPath: postLoginPath,
		publicURL:     strings.TrimRight(publicURL, "/"),
	}
}

func (s *sessionService) BeginLogin(ctx context.Context, returnTo string) (*LoginStart, error) {
	state, err := auth.NewState()
	if err != nil {
		return nil, err
	}
	url, verifier, err := s.provider.AuthURL(state)
	if err != nil {
		return nil, err
	}
	return &LoginStart{
		RedirectURL: url,
		Flow: auth.Flow{
			State:        state,
			CodeVerifier: verifier,
			ReturnTo:     s.safeReturnTo(returnTo),
		},
	}, nil
}

// safeReturnTo keeps redirects on this site.
func (s *sessionService) safeReturnTo(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.Contains(returnTo, `\`) {
		return s.postLoginPath
	}
	return returnTo
}

func (s *sessionService) CompleteLogin(ctx context.Context, flow auth.Flow, state, code string) (*domain.Session, error) {
	if flow.State == "" || state != flow.State {
		return nil, ErrStateMismatch
	}
	tokens, err := s.provider.Exchange(ctx, code, flow.CodeVerifier)
	if err != nil {
		return nil, err
	}
	profile, err := s.provider.Profile(tokens.IDToken)
	if err != nil {
		return nil, err
	}

	sealedAccess, err := s.sealer.Seal([]byte(tokens.AccessToken))
	if err != nil {
		return nil, err
	}
	sealedID, err := s.sealer.Seal([]byte(tokens.IDToken))
	if err != nil {
		return nil, err
	}

	t := now()
	session := &domain.Session{
		SessionID:         uuid.NewString(),
		User:              profile,
		SealedAccessToken: sealedAccess,
		SealedIDToken:     sealedID,
		CreatedAt:         t,
		ExpiresAt:         t.Add(s.ttl),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

func (s *sessionService) Resolve(ctx context.Context, sessionID string) (*ActiveSession, error) {
	if sessionID == "" {
		return nil, ErrUnauthenticated
	}
	session, err := s.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if session.Expired(now()) {
		return nil, ErrUnauthenticated
	}
	token, err := s.sealer.Open(session.SealedAccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return &ActiveSession{Session: session, AccessToken: string(token)}, nil
}

func (s *sessionService) SignOut(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		if err := s.sessionRepo.Delete(ctx, sessionID); err != nil && !isNotFound(err) {
			return "", err
		}
	}
	return s.provider.LogoutURL(s.publicURL + "/"), nil
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, now())
}
