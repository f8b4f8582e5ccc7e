package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueVerify(t *testing.T) {
	m := NewManager("secret", time.Hour, "academic-records")

	raw, err := m.Issue(Claims{UserID: "u1", Email: "hod@uni.edu", Role: "HOD", DepartmentID: "d1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "HOD" || claims.DepartmentID != "d1" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != "u1" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("secret", time.Hour, "academic-records")
	raw, err := m.Issue(Claims{UserID: "u1", Role: "DEAN"})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other", time.Hour, "academic-records")
		if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewManager("secret", time.Hour, "someone-else")
		if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := NewManager("secret", time.Hour, "academic-records")
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := later.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}
