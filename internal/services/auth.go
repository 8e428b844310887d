package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/auth"
	"reachmesh-bknd/internal/config"
	"reachmesh-bknd/internal/logger"
	model "reachmesh-bknd/internal/models"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxActiveSessions = 2

var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)

type AuthService struct {
	db   *bun.DB
	jwt  *auth.JWTManager
	cfg  *config.Config
	logr *logger.Logger
}

func NewAuthService(db *bun.DB, jwt *auth.JWTManager, cfg *config.Config, logr *logger.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, cfg: cfg, logr: logr}
}

// HashPassword uses bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DeviceInfo string `json:"device_info"`
}

func (r RegisterRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return apperr.Invalid("a valid email is required")
	}
	if len(r.Password) < 8 {
		return apperr.Invalid("password must be at least 8 characters")
	}
	return nil
}

// Register creates a local account and its profile, then signs the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*auth.TokenPair, *model.UserInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.db.NewSelect().Model((*model.User)(nil)).Where("lower(email) = ?", email).Exists(ctx)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	u := model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Provider:     "local",
		Name:         strings.TrimSpace(req.FirstName + " " + req.LastName),
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&u).Exec(ctx); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		p := newProfile(u.ID, email, req.FirstName, req.LastName)
		if _, err := tx.NewInsert().Model(p).Exec(ctx); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logr.Info("registered new user", zap.String("user_id", u.ID.String()))

	pair, err := s.issue(ctx, s.db, &u, "local", req.DeviceInfo)
	if err != nil {
		return nil, nil, err
	}
	return pair, u.Info(), nil
}

// LoginLocal checks an email/password pair.
func (s *AuthService) LoginLocal(ctx context.Context, email, password, deviceInfo string) (*auth.TokenPair, *model.UserInfo, error) {
	var u model.User
	err := s.db.NewSelect().Model(&u).Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" {
		return nil, nil, fmt.Errorf("%w: account not configured for local login", apperr.ErrUnauthorized)
	}
	if err := ComparePassword(u.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, u.ID)

	pair, err := s.issue(ctx, s.db, &u, "local", deviceInfo)
	if err != nil {
		return nil, nil, err
	}
	return pair, u.Info(), nil
}

// LoginLDAP binds as the user against the configured directory and
// provisions a local account on first sign-in.
func (s *AuthService) LoginLDAP(ctx context.Context, ldapUser, ldapPass, deviceInfo string) (*auth.TokenPair, *model.UserInfo, error) {
	if !s.cfg.LDAPEnabled() {
		return nil, nil, fmt.Errorf("%w: directory sign-in is not enabled", apperr.ErrUnauthorized)
	}
	if ldapPass == "" {
		// an empty password would be an unauthenticated bind
		return nil, nil, ErrInvalidCredentials
	}
	username := stripDomain(ldapUser, s.cfg.LDAPUserDomain)

	l, err := ldap.DialURL(s.cfg.LDAPServer)
	if err != nil {
		s.logr.Error("LDAP dial failed", zap.Error(err), zap.String("server", s.cfg.LDAPServer))
		return nil, nil, fmt.Errorf("ldap connection failed")
	}
	defer func() {
		if closeErr := l.Close(); closeErr != nil {
			s.logr.Debug("LDAP close error", zap.Error(closeErr))
		}
	}()
	l.SetTimeout(30 * time.Second)

	bindDN := username
	if s.cfg.LDAPUserDomain != "" {
		bindDN = fmt.Sprintf("%s@%s", username, s.cfg.LDAPUserDomain)
	}
	if err = l.Bind(bindDN, ldapPass); err != nil {
		s.logr.Warn("LDAP bind failed", zap.String("username", username))
		return nil, nil, ErrInvalidCredentials
	}

	searchReq := ldap.NewSearchRequest(
		s.cfg.LDAPBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1,
		0,
		false,
		fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(username)),
		[]string{"cn", "mail", "displayName"},
		nil,
	)
	sr, err := l.Search(searchReq)
	if err != nil {
		s.logr.Error("LDAP search failed", zap.Error(err), zap.String("username", username))
		return nil, nil, fmt.Errorf("user lookup failed")
	}
	if len(sr.Entries) == 0 {
		return nil, nil, fmt.Errorf("%w: user not found in directory", apperr.ErrUnauthorized)
	}

	entry := sr.Entries[0]
	mail := strings.ToLower(entry.GetAttributeValue("mail"))
	if mail == "" {
		return nil, nil, fmt.Errorf("%w: directory account missing email", apperr.ErrUnauthorized)
	}
	fullName := firstNonEmpty(entry.GetAttributeValue("displayName"), entry.GetAttributeValue("cn"), username)

	u, err := s.provisionDirectoryUser(ctx, mail, fullName)
	if err != nil {
		return nil, nil, err
	}

	s.touchLastLogin(ctx, u.ID)

	pair, err := s.issue(ctx, s.db, u, "ldap", deviceInfo)
	if err != nil {
		return nil, nil, err
	}
	s.logr.Info("LDAP login successful", zap.String("user_id", u.ID.String()))
	return pair, u.Info(), nil
}

func (s *AuthService) provisionDirectoryUser(ctx context.Context, mail, fullName string) (*model.User, error) {
	var u model.User
	err := s.db.NewSelect().Model(&u).Where("lower(email) = ?", mail).Scan(ctx)
	if err == nil {
		if u.Provider != "ldap" {
			_, _ = s.db.NewUpdate().Model(&u).Set("provider = ?", "ldap").Where("id = ?", u.ID).Exec(ctx)
			u.Provider = "ldap"
		}
		return &u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	u = model.User{
		ID:        uuid.New(),
		Email:     mail,
		Provider:  "ldap",
		Name:      fullName,
		Roles:     []string{"user"},
		CreatedAt: time.Now().UTC(),
	}
	first, last := splitName(fullName)
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&u).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(newProfile(u.ID, mail, first, last)).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}
	s.logr.Info("created new LDAP user", zap.String("id", u.ID.String()))
	return &u, nil
}

func (s *AuthService) touchLastLogin(ctx context.Context, id uuid.UUID) {
	now := time.Now().UTC()
	_, _ = s.db.NewUpdate().Model((*model.User)(nil)).Set("last_login_at = ?", now).Where("id = ?", id).Exec(ctx)
}

// issue signs a token pair and stores its refresh token through db, which
// may be a transaction.
func (s *AuthService) issue(ctx context.Context, db bun.IDB, u *model.User, method, deviceInfo string) (*auth.TokenPair, error) {
	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, method, u.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.storeRefreshToken(ctx, db, u.ID, pair.RefreshToken, pair.RefreshExp, pair.JTI, deviceInfo); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return pair, nil
}

// storeRefreshToken stores the refresh token hashed and keeps at most
// maxActiveSessions live sessions per user, dropping the oldest.
func (s *AuthService) storeRefreshToken(ctx context.Context, db bun.IDB, userID uuid.UUID, refreshToken string, expiresAt time.Time, jti string, deviceInfo string) error {
	if _, err := db.NewDelete().Model((*model.RefreshToken)(nil)).Where("user_id = ? AND expires_at < now()", userID).Exec(ctx); err != nil {
		s.logr.Warn("failed to purge expired sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}

	count, err := db.NewSelect().Model((*model.RefreshToken)(nil)).
		Where("user_id = ? AND revoked = false AND expires_at > now()", userID).
		Count(ctx)
	if err != nil {
		s.logr.Warn("failed to count active sessions", zap.String("user_id", userID.String()), zap.Error(err))
	} else if count >= maxActiveSessions {
		toRemove := count - maxActiveSessions + 1
		_, err := db.NewDelete().Model((*model.RefreshToken)(nil)).
			Where("id IN (SELECT id FROM refresh_tokens WHERE user_id = ? AND revoked = false AND expires_at > now() ORDER BY created_at ASC LIMIT ?)", userID, toRemove).
			Exec(ctx)
		if err != nil {
			s.logr.Warn("failed to drop oldest sessions", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	rt := model.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		JTI:       jti,
		TokenHash: auth.HashToken(refreshToken),
		Revoked:   false,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	if deviceInfo != "" {
		rt.DeviceInfo = &deviceInfo
	}
	_, err = db.NewInsert().Model(&rt).Exec(ctx)
	return err
}

// Refresh verifies the refresh token, revokes it and issues a new pair in
// one transaction. The revoke only succeeds for a live token, so a token can
// be exchanged once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, deviceInfo string) (*auth.TokenPair, error) {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token: %v", apperr.ErrUnauthorized, err)
	}
	if claims.Kind != auth.RefreshToken {
		return nil, fmt.Errorf("%w: not a refresh token", apperr.ErrUnauthorized)
	}

	var pair *auth.TokenPair
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var rt model.RefreshToken
		err := tx.NewSelect().Model(&rt).
			Where("jti = ? AND token_hash = ? AND revoked = false AND expires_at > now()", claims.JTI, auth.HashToken(refreshToken)).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: refresh token not found or revoked", apperr.ErrUnauthorized)
		}
		if err != nil {
			return err
		}

		var u model.User
		err = tx.NewSelect().Model(&u).Where("id = ?", rt.UserID).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user not found", apperr.ErrUnauthorized)
		}
		if err != nil {
			return err
		}

		res, err := tx.NewUpdate().Model((*model.RefreshToken)(nil)).
			Set("revoked = true").
			Where("id = ?", rt.ID).
			Where("revoked = false").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			s.logr.Warn("refresh token reused", zap.String("user_id", u.ID.String()), zap.String("jti", claims.JTI))
			return fmt.Errorf("%w: refresh token already used", apperr.ErrUnauthorized)
		}

		pair, err = s.issue(ctx, tx, &u, u.Provider, deviceInfo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	_, err = s.db.NewUpdate().Model((*model.RefreshToken)(nil)).Set("revoked = true").Where("jti = ?", claims.JTI).Exec(ctx)
	return err
}

func (s *AuthService) CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error) {
	var version int
	err := s.db.NewSelect().Model((*model.User)(nil)).Column("token_version").Where("id = ?", userID).Scan(ctx, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return version == tokenVersion, nil
}

func newProfile(id uuid.UUID, email, first, last string) *model.Profile {
	p := &model.Profile{ID: id, Email: &email}
	if first = strings.TrimSpace(first); first != "" {
		p.FirstName = &first
	}
	if last = strings.TrimSpace(last); last != "" {
		p.LastName = &last
	}
	return p
}

func stripDomain(user, domain string) string {
	user = strings.TrimSpace(user)
	if domain == "" {
		return user
	}
	suffix := "@" + strings.ToLower(domain)
	if strings.HasSuffix(strings.ToLower(user), suffix) {
		return user[:len(user)-len(suffix)]
	}
	return user
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
