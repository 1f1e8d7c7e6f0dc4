// generate-jwt mints a throwaway RSA key pair and a signed end-user
// bearer token against it, for exercising the `Authorization: Bearer`
// auth scheme (§6) against a local account without wiring up a real
// identity provider. Adapted from unburdy_server/cmd/generate-jwt, which
// minted an HMAC token against a hardcoded secret; end-user tokens here
// are RSA-signed against a per-account public_jwt_key instead.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unburdy/scheduler-module/internal/domain"
)

func main() {
	userID := flag.String("user", "", "user_id to embed in the claims (defaults to a fresh ID)")
	flag.Parse()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatal(err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		log.Fatal(err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	uid := domain.NewID()
	if *userID != "" {
		parsed, err := domain.ParseID(*userID)
		if err != nil {
			log.Fatalf("invalid -user: %v", err)
		}
		uid = parsed
	}

	claims := domain.UserClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			Issuer:    "scheduler-module/generate-jwt",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("public_jwt_key (set via PUT /api/v1/account/public-jwt-key):\n%s\n", pubPEM)
	fmt.Printf("bearer token for user %s:\n%s\n\n", uid, signed)
	fmt.Printf("use it as:\nAuthorization: Bearer %s\n", signed)
}
