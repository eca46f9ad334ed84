package auth

import (
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	ts, err := NewHS256Service("secret-for-tests", "linkshort", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, err := ts.Sign("ops", "admin")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "ops" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewHS256Service("secret-a", "linkshort", time.Hour)
	b, _ := NewHS256Service("secret-b", "linkshort", time.Hour)

	token, err := a.Sign("ops", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatal("换了 secret 还能通过校验")
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	a, _ := NewHS256Service("secret", "issuer-a", time.Hour)
	b, _ := NewHS256Service("secret", "issuer-b", time.Hour)

	token, err := a.Sign("ops", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatal("issuer 不同还能通过校验")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	ts, _ := NewHS256Service("secret", "linkshort", time.Millisecond)
	token, err := ts.Sign("ops", "admin")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ts.Verify(token); err == nil {
		t.Fatal("过期 token 还能通过校验")
	}
}

func TestNewHS256ServiceValidation(t *testing.T) {
	if _, err := NewHS256Service("", "iss", time.Hour); err == nil {
		t.Error("空 secret 应当报错")
	}
	if _, err := NewHS256Service("s", "", time.Hour); err == nil {
		t.Error("空 issuer 应当报错")
	}
	if _, err := NewHS256Service("s", "iss", 0); err == nil {
		t.Error("ttl=0 应当报错")
	}
}
