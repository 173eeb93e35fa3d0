// Package token implements the credential contract shared by the auth and
// books services: HS256-signed access and refresh tokens carrying the user id
// as subject. Verification of signature, expiry and token type is purely
// local and never touches the network or any store.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the JWT payload used for both token kinds. Refresh tokens
// additionally carry an ID (jti) so they can be revoked individually.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SubjectID decodes the numeric user id embedded in the subject claim.
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Pair bundles the two credentials minted on login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer mints signed access and refresh tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssuePair mints a fresh access/refresh pair for the given user.
func (i *Issuer) IssuePair(userID int64) (Pair, error) {
	access, err := i.sign(userID, TypeAccess, i.accessTTL, "")
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, TypeRefresh, i.refreshTTL, uuid.NewString())
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a new access token only, used by the refresh flow.
func (i *Issuer) IssueAccess(userID int64) (string, error) {
	return i.sign(userID, TypeAccess, i.accessTTL, "")
}

func (i *Issuer) sign(userID int64, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verifier validates tokens against the shared signing secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyAccess checks signature, expiry and token type, and returns the
// embedded subject id. A refresh token is rejected here regardless of
// signature validity.
func (v *Verifier) VerifyAccess(raw string) (int64, error) {
	claims, err := v.parse(raw, TypeAccess)
	if err != nil {
		return 0, err
	}
	return claims.SubjectID()
}

// ParseRefresh validates a refresh token and returns its claims so the caller
// can consult the revocation set for the jti.
func (v *Verifier) ParseRefresh(raw string) (*Claims, error) {
	return v.parse(raw, TypeRefresh)
}

func (v *Verifier) parse(raw, wantType string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
