package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"vtrader/internal/ledger"
	"vtrader/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrWrongLogin         = errors.New("wrong login endpoint for this account")
)

// Service is the identity collaborator: it verifies credentials and
// issues tokens carrying the account id and a typed role. The core
// trusts the (accountID, role) pair resolved from the token.
type Service struct {
	creds           credentialsStore
	ledger          *ledger.Service
	issuer          string
	secret          []byte
	ttl             time.Duration
	startingBalance decimal.Decimal
}

func NewService(pool *pgxpool.Pool, ledgerSvc *ledger.Service, issuer string, secret []byte, ttl time.Duration, startingBalance decimal.Decimal) *Service {
	return &Service{
		creds:           &pgCredentials{pool: pool},
		ledger:          ledgerSvc,
		issuer:          issuer,
		secret:          secret,
		ttl:             ttl,
		startingBalance: startingBalance,
	}
}

type claims struct {
	jwt.RegisteredClaims
	Role types.Role `json:"role"`
}

func (s *Service) Register(ctx context.Context, name, email, phone, password string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return "", "", errors.New("name, email and password are required")
	}
	exists, err := s.creds.emailExists(ctx, email)
	if err != nil {
		return "", "", err
	}
	if exists {
		return "", "", ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	acc, err := s.ledger.RegisterAccount(ctx, name, email, phone, s.startingBalance, false)
	if err != nil {
		return "", "", err
	}
	if err := s.creds.insert(ctx, acc.ID, string(hash)); err != nil {
		// Back the account out so the email is not left registered
		// with no way to log in.
		_ = s.ledger.RemoveAccount(ctx, acc.ID)
		return "", "", err
	}
	token, err := s.signToken(acc.ID, types.RoleUser)
	if err != nil {
		return "", "", err
	}
	return acc.ID, token, nil
}

// Login authenticates against the user or admin endpoint. The endpoints
// are split as in the original product: admins cannot log in through
// the user endpoint and vice versa.
func (s *Service) Login(ctx context.Context, email, password string, wantAdmin bool) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row, err := s.creds.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, errNoCredentials) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if row.IsAdmin != wantAdmin {
		return "", ErrWrongLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	role := types.RoleUser
	if row.IsAdmin {
		role = types.RoleAdmin
	}
	return s.signToken(row.UserID, role)
}

func (s *Service) signToken(userID string, role types.Role) (string, error) {
	now := time.Now().UTC()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

// ParseToken resolves the verified (accountID, role) pair. The role is
// derived once here; handlers pass it into core calls without
// re-checking the account row.
func (s *Service) ParseToken(token string) (string, types.Role, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", "", errors.New("invalid token")
	}
	if c.Issuer != s.issuer || c.Subject == "" {
		return "", "", errors.New("invalid token")
	}
	role := c.Role
	if role != types.RoleAdmin {
		role = types.RoleUser
	}
	return c.Subject, role, nil
}

// EnsureAdmin creates the bootstrap administrator account when no admin
// exists yet. Admin accounts start with a zero balance and never trade.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	exists, err := s.creds.adminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc, err := s.ledger.RegisterAccount(ctx, "Admin User", strings.ToLower(email), "", decimal.Zero, true)
	if err != nil {
		return err
	}
	if err := s.creds.insert(ctx, acc.ID, string(hash)); err != nil {
		_ = s.ledger.RemoveAccount(ctx, acc.ID)
		return err
	}
	return nil
}
