package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	raw, err := MakeAccessToken("user-1", true, testSecret)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}

	claims, err := ParseToken(raw, testSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("uid: got %s", claims.UserID)
	}
	if !claims.Admin {
		t.Error("admin claim lost")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	raw, err := MakeAccessToken("user-1", false, testSecret)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	if _, err := ParseToken(raw, "other-secret"); err == nil {
		t.Fatal("token signed with a different secret should be rejected")
	}
}

func TestParseTokenRejectsNone(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(raw, testSecret); err == nil {
		t.Fatal("unsigned token should be rejected")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.jwt", testSecret); err == nil {
		t.Fatal("garbage should be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("wrong password accepted")
	}
}

func TestRefreshTokenHash(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if raw == "" || hash == "" {
		t.Fatal("empty token material")
	}
	if raw == hash {
		t.Fatal("raw token equals its hash")
	}
	if HashRefreshToken(raw) != hash {
		t.Error("hash is not reproducible from the raw value")
	}

	raw2, hash2, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if raw2 == raw || hash2 == hash {
		t.Error("tokens should be unique per call")
	}
}
