package flows

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

var (
	errNotReady     = errors.New("not ready")
	errUserNotFound = errors.New("user not found")
	errBlocked      = errors.New("blocked")
	errInfra        = errors.New("infra")
	errAttempt      = errors.New("attempt")
	errMethod       = errors.New("method")
)

type authHarness struct {
	user       *AuthUserRecord
	findErr    error
	compareOK  bool
	compareErr error
	issueErr   error
	resetErr   error

	recorded int
	resets   int
	issued   int
	events   []string
}

func (h *authHarness) deps() AuthenticateDeps {
	return AuthenticateDeps{
		FindUser: func(context.Context, string) (*AuthUserRecord, error) {
			if h.findErr != nil {
				return nil, h.findErr
			}
			if h.user == nil {
				return nil, nil
			}
			u := *h.user
			return &u, nil
		},
		ProviderAllowed: func(authType string, providerID int) bool {
			return authType == "email" && providerID == 1
		},
		ComparePassword: func(string, string) (bool, error) { return h.compareOK, h.compareErr },
		RecordFailure: func(context.Context, string) error {
			h.recorded++
			return fmt.Errorf("%w: %d", errAttempt, h.recorded)
		},
		IssueTokens: func(context.Context, string, string, string) (string, string, error) {
			h.issued++
			if h.issueErr != nil {
				return "", "", h.issueErr
			}
			return "access", "refresh", nil
		},
		ResetFailures: func(context.Context, string) error {
			h.resets++
			return h.resetErr
		},
		AuthMethodError: func(int) error { return errMethod },
		Infrastructure: func(op string, err error) error {
			return fmt.Errorf("%w: %s: %v", errInfra, op, err)
		},
		EmitAudit: func(_ context.Context, event string, _ bool, _ string, _ error, _ func() map[string]string) {
			h.events = append(h.events, event)
		},
		Events: AuthenticateEvents{LoginSuccess: "login_success", LoginFailure: "login_failure"},
		Errors: AuthenticateErrors{
			EngineNotReady: errNotReady,
			UserNotFound:   errUserNotFound,
			AccountBlocked: errBlocked,
		},
	}
}

func strPtr(s string) *string { return &s }

func emailUser() *AuthUserRecord {
	return &AuthUserRecord{UserID: "u1", Email: "a@b.c", PasswordHash: "hash", AuthProviderID: 1}
}

func TestRunAuthenticateSuccess(t *testing.T) {
	h := &authHarness{user: emailUser(), compareOK: true}
	res, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("pw")}, h.deps())
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if res.AccessToken != "access" || res.RefreshToken != "refresh" {
		t.Fatalf("unexpected tokens %+v", res)
	}
	if res.User.PasswordHash != "" {
		t.Fatal("password hash leaked into result")
	}
	if h.resets != 1 {
		t.Fatalf("expected one reset, got %d", h.resets)
	}
	if len(h.events) != 1 || h.events[0] != "login_success" {
		t.Fatalf("unexpected events %v", h.events)
	}
}

func TestRunAuthenticateUserNotFound(t *testing.T) {
	h := &authHarness{}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "x", AuthType: "email"}, h.deps())
	if !errors.Is(err, errUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestRunAuthenticateStoreFailureIsInfrastructure(t *testing.T) {
	h := &authHarness{findErr: errors.New("db down")}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "x", AuthType: "email"}, h.deps())
	if !errors.Is(err, errInfra) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestRunAuthenticateForbiddenMethod(t *testing.T) {
	h := &authHarness{user: emailUser()}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "google", Password: strPtr("pw")}, h.deps())
	if !errors.Is(err, errMethod) {
		t.Fatalf("expected method error, got %v", err)
	}
	if h.recorded != 0 || h.issued != 0 {
		t.Fatal("no password work or issuance expected")
	}
}

func TestRunAuthenticateBlockedBeforePassword(t *testing.T) {
	u := emailUser()
	u.Blocked = true
	h := &authHarness{user: u, compareOK: true}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("pw")}, h.deps())
	if !errors.Is(err, errBlocked) {
		t.Fatalf("expected blocked, got %v", err)
	}
	if h.issued != 0 {
		t.Fatal("blocked account must not get tokens")
	}
}

func TestRunAuthenticateWrongPasswordRecordsFailure(t *testing.T) {
	h := &authHarness{user: emailUser(), compareOK: false}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("bad")}, h.deps())
	if !errors.Is(err, errAttempt) {
		t.Fatalf("expected attempt error, got %v", err)
	}
	if h.recorded != 1 || h.issued != 0 || h.resets != 0 {
		t.Fatalf("unexpected side effects recorded=%d issued=%d resets=%d", h.recorded, h.issued, h.resets)
	}
}

func TestRunAuthenticateCompareErrorIsInfrastructure(t *testing.T) {
	h := &authHarness{user: emailUser(), compareErr: errors.New("bad hash")}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("pw")}, h.deps())
	if !errors.Is(err, errInfra) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	if h.recorded != 0 {
		t.Fatal("compare error must not count as a failed attempt")
	}
}

func TestRunAuthenticateSkipsPasswordWhenAbsent(t *testing.T) {
	noHash := emailUser()
	noHash.PasswordHash = ""
	h := &authHarness{user: noHash}
	if _, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("anything")}, h.deps()); err != nil {
		t.Fatalf("expected success without stored hash, got %v", err)
	}

	h = &authHarness{user: emailUser()}
	if _, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email"}, h.deps()); err != nil {
		t.Fatalf("expected success without supplied password, got %v", err)
	}
}

func TestRunAuthenticateResetFailureDoesNotFailLogin(t *testing.T) {
	h := &authHarness{user: emailUser(), compareOK: true, resetErr: errors.New("redis down")}
	if _, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("pw")}, h.deps()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestRunAuthenticateIssueFailurePropagates(t *testing.T) {
	h := &authHarness{user: emailUser(), compareOK: true, issueErr: errInfra}
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{Email: "a@b.c", AuthType: "email", Password: strPtr("pw")}, h.deps())
	if !errors.Is(err, errInfra) {
		t.Fatalf("expected issue error, got %v", err)
	}
	if h.resets != 0 {
		t.Fatal("counter must not be reset when issuance fails")
	}
}

func TestRunAuthenticateNotReady(t *testing.T) {
	_, err := RunAuthenticate(context.Background(), AuthenticateRequest{}, AuthenticateDeps{Errors: AuthenticateErrors{EngineNotReady: errNotReady}})
	if !errors.Is(err, errNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
}
