package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestSignAndVerify(t *testing.T) {
	token, err := Sign(secret, "ops", time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	claims, err := Verify(token, VerifyConfig{SecretKey: secret, ExpectedIssuer: Issuer})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "ops" {
		t.Errorf("Expected subject ops, got %s", claims.Subject)
	}
}

func TestVerifyRejects(t *testing.T) {
	good, _ := Sign(secret, "ops", time.Hour)
	expired, _ := Sign(secret, "ops", -time.Hour)
	noExpiry := signClaims(t, map[string]interface{}{"iss": Issuer, "sub": "ops", "iat": time.Now().Unix()})

	tests := []struct {
		name  string
		token string
		cfg   VerifyConfig
		want  error
	}{
		{"empty", "", VerifyConfig{SecretKey: secret}, ErrInvalidToken},
		{"garbage", "not.a.jwt", VerifyConfig{SecretKey: secret}, ErrInvalidToken},
		{"wrong key", good, VerifyConfig{SecretKey: []byte("another-secret-another-secret-xx")}, ErrInvalidSignature},
		{"expired", expired, VerifyConfig{SecretKey: secret}, ErrTokenExpired},
		{"no expiry", noExpiry, VerifyConfig{SecretKey: secret}, ErrMissingExpiry},
		{"issuer", good, VerifyConfig{SecretKey: secret, ExpectedIssuer: "someone-else"}, ErrInvalidIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify(tt.token, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSignRequiresSecret(t *testing.T) {
	if _, err := Sign(nil, "ops", time.Hour); err == nil {
		t.Error("Expected an error for an empty secret")
	}
}

func signClaims(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, nil)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	return token
}
