package domain

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/golang-jwt/jwt/v5"
	"github.com/unburdy/scheduler-module/internal/apperr"
)

// Account is the tenant: it owns every other entity (§3).
type Account struct {
	ID             ID
	SecretAPIKey   string // opaque, issued at creation, immutable
	PublicJWTKeyPEM string // optional; PEM-encoded RSA public key
	Webhook        *AccountWebhook
	Integrations   map[string]IntegrationCredentials
}

// AccountWebhook is the account's reminder-delivery target (§6).
type AccountWebhook struct {
	URL             string
	VerificationKey string
}

// IntegrationCredentials is the OAuth client config for one external
// calendar provider (Google, Outlook, ...). The sync itself is boundary
// code (§1); only the credential record is part of the core model.
type IntegrationCredentials struct {
	Provider     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// NewAccount creates an Account with a freshly generated secret API key.
// publicJWTKeyPEM may be empty; if set it is validated as a PEM-encoded
// RSA public key now, per §9's "validated on set".
func NewAccount(publicJWTKeyPEM string) (*Account, error) {
	if publicJWTKeyPEM != "" {
		if _, err := ParseRSAPublicKeyPEM(publicJWTKeyPEM); err != nil {
			return nil, apperr.WrapBadInput(err, "invalid public_jwt_key")
		}
	}
	return &Account{
		ID:              NewID(),
		SecretAPIKey:    NewID().String() + NewID().String(),
		PublicJWTKeyPEM: publicJWTKeyPEM,
		Integrations:    map[string]IntegrationCredentials{},
	}, nil
}

// SetPublicJWTKey validates and sets the account's RSA verification key.
func (a *Account) SetPublicJWTKey(pemStr string) error {
	if pemStr != "" {
		if _, err := ParseRSAPublicKeyPEM(pemStr); err != nil {
			return apperr.WrapBadInput(err, "invalid public_jwt_key")
		}
	}
	a.PublicJWTKeyPEM = pemStr
	return nil
}

// SetWebhook validates and sets the account's webhook target. An empty
// URL clears the webhook.
func (a *Account) SetWebhook(url, verificationKey string) error {
	if url == "" {
		a.Webhook = nil
		return nil
	}
	a.Webhook = &AccountWebhook{URL: url, VerificationKey: verificationKey}
	return nil
}

// ParseRSAPublicKeyPEM parses and validates a PEM-encoded RSA public key,
// as used for end-user JWT verification (§6).
func ParseRSAPublicKeyPEM(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, apperr.NewBadInput("not a valid PEM block")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apperr.WrapBadInput(err, "failed to parse PKIX public key")
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, apperr.NewBadInput("public key is not RSA")
	}
	return rsaPub, nil
}

// UserClaims are the claims carried by the end-user bearer JWT (§6).
type UserClaims struct {
	UserID ID      `json:"user_id"`
	Policy *Policy `json:"policy,omitempty"`
	jwt.RegisteredClaims
}

// Policy is the optional allow/reject hook the HTTP boundary honors
// beyond basic identity verification (§1 non-goals: full policy
// evaluation is out of scope, only these hooks are honored).
type Policy struct {
	Allow  []string `json:"allow,omitempty"`
	Reject []string `json:"reject,omitempty"`
}

// Allows reports whether route is permitted by the policy. A nil Policy
// allows everything not explicitly rejected.
func (p *Policy) Allows(route string) bool {
	if p == nil {
		return true
	}
	for _, r := range p.Reject {
		if r == route {
			return false
		}
	}
	if len(p.Allow) == 0 {
		return true
	}
	for _, r := range p.Allow {
		if r == route {
			return true
		}
	}
	return false
}
