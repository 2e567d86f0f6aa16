package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/server/auth"
)

func TestConfirmEmail_Endpoint(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "secret12",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	token, err := auth.IssueToken("alice@example.com", auth.PurposeVerifyEmail, []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	rec = f.do(http.MethodGet, "/api/email/confirmed_email/"+token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Email confirmed") {
		t.Fatalf("unexpected body: %s", rec.Body)
	}
	if !f.repoMgr.users.byEmail["alice@example.com"].Confirmed {
		t.Fatal("account not confirmed")
	}

	// rerun reports already confirmed instead of failing
	rec = f.do(http.MethodGet, "/api/email/confirmed_email/"+token, "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "already confirmed") {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestConfirmEmail_BadToken(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/email/confirmed_email/garbage", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequestEmail_Endpoint(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.signupAndLogin(t, "alice@example.com")

	rec := f.do(http.MethodPost, "/api/email/request_email", "", gin.H{"email": "alice@example.com"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "already confirmed") {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	rec = f.do(http.MethodPost, "/api/email/request_email", "", gin.H{"email": "ghost@example.com"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestResetPassword_Endpoint(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.signupAndLogin(t, "alice@example.com")

	rec := f.do(http.MethodPost, "/api/email/forget-password", "", gin.H{"email": "alice@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("forget-password status = %d, body %s", rec.Code, rec.Body)
	}

	token, err := auth.IssueToken("alice@example.com", auth.PurposeResetPassword, []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	rec = f.do(http.MethodPost, "/api/email/reset-password/"+token, "", gin.H{
		"new_password_1": "brandnew1", "new_password_2": "different",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched pair status = %d, want 400", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/email/reset-password/"+token, "", gin.H{
		"new_password_1": "brandnew1", "new_password_2": "brandnew1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", rec.Code, rec.Body)
	}

	// old password no longer works, new one does
	rec = f.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret12",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password status = %d, want 401", rec.Code)
	}
	rec = f.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "brandnew1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("new password status = %d, body %s", rec.Code, rec.Body)
	}
}
