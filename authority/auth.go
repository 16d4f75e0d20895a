package authority

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// Auth validates bearer tokens presented to the authority. It runs in one of
// two modes: a shared-secret HS256 mode that can also mint tokens (the local
// development and test mode), or a verify-only RS256 mode against a remote
// JWKS endpoint.
type Auth struct {
	secret   []byte
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
	parser   *jwt.Parser
}

// NewAuth creates an HS256 Auth with the given shared secret.
func NewAuth(secret []byte) *Auth {
	if len(secret) == 0 {
		panic("authority.NewAuth: empty secret")
	}
	return &Auth{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// NewJWKSAuth creates a verify-only Auth against the JWKS published at
// jwksURL. Tokens minted elsewhere are accepted when audience and issuer
// match.
func NewJWKSAuth(jwksURL, audience, issuer string) (*Auth, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, err
	}
	return &Auth{
		jwks:     jwks,
		audience: audience,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}, nil
}

// Mint issues an HS256 token for the given subject. It fails in JWKS mode.
func (a *Auth) Mint(subject string, ttl time.Duration) (string, error) {
	if a.secret == nil {
		return "", errors.New("token minting requires shared-secret mode")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// UserIDFromAuthHeader extracts the subject from an Authorization header.
func (a *Auth) UserIDFromAuthHeader(h string) (string, error) {
	if h == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("bad auth header")
	}

	var token *jwt.Token
	var err error
	if a.secret != nil {
		token, err = a.parser.Parse(parts[1], func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return a.secret, nil
		})
	} else {
		token, err = a.parser.Parse(parts[1], a.jwks.Keyfunc)
	}
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return "", errors.New("token not valid yet")
	}
	if a.audience != "" && !claims.VerifyAudience(a.audience, false) {
		return "", errors.New("invalid audience")
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, false) {
		return "", errors.New("invalid issuer")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}
