package adminauth

import "testing"

func TestLogin_WrongPasswordRejected(t *testing.T) {
	a, err := New("correct-horse")
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	if _, err := a.Login("wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_ThenAuthenticateSucceeds(t *testing.T) {
	a, err := New("correct-horse")
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	token, err := a.Login("correct-horse")
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if !a.Authenticate(token) {
		t.Fatalf("expected token to authenticate")
	}
}

func TestLogout_InvalidatesToken(t *testing.T) {
	a, err := New("correct-horse")
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	token, err := a.Login("correct-horse")
	if err != nil {
		t.Fatalf("Login err: %v", err)
	}
	a.Logout(token)
	if a.Authenticate(token) {
		t.Fatalf("expected logged-out token to fail authentication")
	}
}

func TestNew_EmptyPasswordDisablesLogin(t *testing.T) {
	a, err := New("")
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	if _, err := a.Login(""); err != ErrInvalidCredentials {
		t.Fatalf("expected login with no configured password to fail, got %v", err)
	}
}
