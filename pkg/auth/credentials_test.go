package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCredentials_PlainPassword(t *testing.T) {
	c := NewCredentials("admin", "s3cret", "")
	if !c.Configured() {
		t.Fatal("expected configured")
	}

	cases := []struct {
		name     string
		user     string
		pass     string
		expected bool
	}{
		{"match", "admin", "s3cret", true},
		{"wrong password", "admin", "s3cre", false},
		{"wrong username", "Admin", "s3cret", false},
		{"both wrong", "root", "toor", false},
		{"empty", "", "", false},
		{"longer password", "admin", "s3cret-and-more", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Verify(tc.user, tc.pass); got != tc.expected {
				t.Errorf("Verify(%q, %q) = %v, want %v", tc.user, tc.pass, got, tc.expected)
			}
		})
	}
}

func TestCredentials_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	c := NewCredentials("admin", "ignored", string(hash))

	if !c.Verify("admin", "s3cret") {
		t.Error("expected bcrypt password to verify")
	}
	if c.Verify("admin", "ignored") {
		t.Error("expected plain password ignored when hash is set")
	}
	if c.Verify("other", "s3cret") {
		t.Error("expected wrong username to fail")
	}
}

func TestCredentials_Unconfigured(t *testing.T) {
	for _, c := range []*Credentials{
		NewCredentials("", "", ""),
		NewCredentials("admin", "", ""),
		NewCredentials("", "pass", ""),
		nil,
	} {
		if c.Configured() {
			t.Errorf("expected unconfigured: %+v", c)
		}
		if c.Verify("", "") {
			t.Error("expected Verify=false when unconfigured")
		}
	}
}
