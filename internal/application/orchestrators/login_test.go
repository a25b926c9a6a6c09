package orchestrators

import (
	"context"
	"errors"
	"testing"

	"compreg/internal/domain/account"
)

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Issue(accountID, role string) (string, error) {
	return "token-" + accountID, nil
}

func testAccount(t *testing.T) account.Account {
	t.Helper()
	acct := account.Account{
		ID:    "acct-1",
		Name:  "Mele Taufa",
		Email: "mele@example.com",
		Role:  account.RoleCompetitor,
	}
	if err := acct.SetPassword("correct-horse"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	return acct
}

// TestExecuteSignup tests account creation and the duplicate email guard.
func TestExecuteSignup(t *testing.T) {
	store := newMockAccountStore()
	deps := SignupDeps{AccountStore: store, GenerateID: fixedID, Now: fixedNow}

	id, err := ExecuteSignup(context.Background(), SignupInput{
		Name:     "Mele Taufa",
		Email:    "Mele@Example.com",
		Password: "correct-horse",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "test-id-001" {
		t.Errorf("id = %s, want test-id-001", id)
	}

	acct := store.accounts["test-id-001"]
	if acct.Email != "mele@example.com" {
		t.Errorf("Email = %s, want lowercased", acct.Email)
	}
	if acct.Role != account.RoleCompetitor {
		t.Errorf("Role = %s, want competitor", acct.Role)
	}
	if err := acct.CheckPassword("correct-horse"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	// Same email again, any casing.
	if _, err := ExecuteSignup(context.Background(), SignupInput{
		Name:     "Other",
		Email:    "MELE@example.com",
		Password: "another-pass",
	}, deps); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

// TestExecuteSignup_ShortPassword tests the password length rule.
func TestExecuteSignup_ShortPassword(t *testing.T) {
	store := newMockAccountStore()
	_, err := ExecuteSignup(context.Background(), SignupInput{
		Name:     "Mele",
		Email:    "mele@example.com",
		Password: "short",
	}, SignupDeps{AccountStore: store, GenerateID: fixedID, Now: fixedNow})
	if !errors.Is(err, account.ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

// TestExecuteLogin_Valid tests the happy path, including token issuance.
func TestExecuteLogin_Valid(t *testing.T) {
	store := newMockAccountStore(testAccount(t))

	result, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "mele@example.com",
		Password: "correct-horse",
	}, LoginDeps{AccountStore: store, TokenIssuer: fakeTokenIssuer{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccountID != "acct-1" || result.Token != "token-acct-1" {
		t.Errorf("result = %+v", result)
	}
}

// TestExecuteLogin_WrongPassword tests that failures are counted and the
// error stays generic.
func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore(testAccount(t))

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "mele@example.com",
		Password: "wrong",
	}, LoginDeps{AccountStore: store, TokenIssuer: fakeTokenIssuer{}})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.accounts["acct-1"].FailedLogins != 1 {
		t.Errorf("FailedLogins = %d, want 1", store.accounts["acct-1"].FailedLogins)
	}
}

// TestExecuteLogin_Lockout tests that five failures lock the account.
func TestExecuteLogin_Lockout(t *testing.T) {
	store := newMockAccountStore(testAccount(t))
	deps := LoginDeps{AccountStore: store, TokenIssuer: fakeTokenIssuer{}}

	for i := 0; i < 5; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{Email: "mele@example.com", Password: "wrong"}, deps)
	}

	// Correct password no longer helps while locked.
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "mele@example.com", Password: "correct-horse"}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
}

// TestExecuteLogin_UnknownEmail tests the generic error for unknown accounts.
func TestExecuteLogin_UnknownEmail(t *testing.T) {
	store := newMockAccountStore()
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever1",
	}, LoginDeps{AccountStore: store, TokenIssuer: fakeTokenIssuer{}})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
