// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService proxies logins to the ERP and verifies the access tokens it
// issues. The ERP signs tokens with a secret it shares with the BFA.
type AuthService struct {
	erp       port.Authenticator
	jwtSecret []byte
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(erp port.Authenticator, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{erp: erp, jwtSecret: []byte(jwtSecret), logger: logger}
}

// ============================================================
// Login: POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.name", req.Username))

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "username is required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "password is required"}
	}

	resp, err := s.erp.Login(ctx, req)
	if err != nil {
		var unauthorized *domain.ErrUnauthorized
		if errors.As(err, &unauthorized) {
			s.logger.Warn("login: rejected by erp", zap.String("username", req.Username))
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("erp login: %w", err)
	}

	if !resp.Role.Valid() {
		s.logger.Error("login: erp returned unknown role",
			zap.String("user_id", resp.UserID),
			zap.String("role", string(resp.Role)),
		)
		return nil, &domain.ErrForbidden{Action: "login with role " + string(resp.Role)}
	}

	s.logger.Info("user logged in",
		zap.String("user_id", resp.UserID),
		zap.String("role", string(resp.Role)),
	)
	return resp, nil
}

// ============================================================
// ValidateToken: used by middleware
// ============================================================

// SessionClaims are the claims the ERP puts in its access tokens.
type SessionClaims struct {
	Role domain.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// ValidateToken verifies an HS256 access token and returns the session it
// carries. The raw token is kept on the session for upstream calls.
func (s *AuthService) ValidateToken(tokenString string) (*domain.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	if claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "token has no subject"}
	}
	if !claims.Role.Valid() {
		return nil, &domain.ErrUnauthorized{Message: "token carries an unknown role"}
	}

	return &domain.Session{
		Subject: claims.Subject,
		Name:    claims.Name,
		Role:    claims.Role,
		Token:   tokenString,
	}, nil
}
