package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, RetryWithFullEmail: true}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func grantJSON() map[string]any {
	return map[string]any{
		"access":    "abc",
		"expiresIn": 3600,
		"user": map[string]any{
			"id":         1,
			"username":   "admin",
			"email":      "admin@example.com",
			"first_name": "Ada",
			"last_name":  "Mn",
			"role":       "manager",
		},
	}
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "admin" || body["password"] != "admin123" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(grantJSON())
	})

	grant, err := client.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if grant.Token != "abc" {
		t.Fatalf("expected token abc, got %q", grant.Token)
	}
	if grant.ExpiresIn != time.Hour {
		t.Fatalf("expected 1h expiry, got %v", grant.ExpiresIn)
	}
	if grant.User.ID != "1" || grant.User.DisplayName != "Ada Mn" || grant.User.Role != "manager" {
		t.Fatalf("unexpected normalized user: %+v", grant.User)
	}
}

func TestLoginDerivedUsernameThenEmailRetry(t *testing.T) {
	var attempts []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		attempts = append(attempts, body["username"])

		if body["username"] != "admin@example.com" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "no such user"})
			return
		}
		json.NewEncoder(w).Encode(grantJSON())
	})

	grant, err := client.Login(context.Background(), "admin@example.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if grant.Token != "abc" {
		t.Fatalf("expected grant from retry, got %+v", grant)
	}
	if len(attempts) != 2 || attempts[0] != "admin" || attempts[1] != "admin@example.com" {
		t.Fatalf("expected local-part then full-email attempts, got %v", attempts)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "wrong password"})
	})

	_, err := client.Login(context.Background(), "admin", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Login(context.Background(), "admin", "admin123")
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected ErrServerError, got %v", err)
	}
}

func TestLoginNetworkFailure(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Login(context.Background(), "admin", "admin123")
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestLoginCancellationSurfacesContextError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Login(ctx, "admin", "admin123")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestGoogleLoginTokenFieldFallbacks(t *testing.T) {
	for _, field := range []string{"access_token", "access", "token"} {
		t.Run(field, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["access_token"] != "google-token" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				json.NewEncoder(w).Encode(map[string]any{
					field:      "abc",
					"username": "admin",
					"email":    "admin@example.com",
				})
			})

			grant, err := client.GoogleLogin(context.Background(), "google-token")
			if err != nil {
				t.Fatalf("google login: %v", err)
			}
			if grant.Token != "abc" {
				t.Fatalf("expected token abc via %s, got %q", field, grant.Token)
			}
			if grant.User.ID != "admin" {
				t.Fatalf("expected username fallback for user id, got %+v", grant.User)
			}
		})
	}
}

func TestGoogleLoginMissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"username": "admin"})
	})

	_, err := client.GoogleLogin(context.Background(), "google-token")
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected ErrServerError for missing token, got %v", err)
	}
}

func TestRegisterSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username == "" || req.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access": "abc"})
	})

	grant, err := client.Register(context.Background(), RegisterRequest{
		Username: "newstaff",
		Email:    "staff@example.com",
		Password: "Str0ngpass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if grant.User.ID != "newstaff" {
		t.Fatalf("expected username filled into user record, got %+v", grant.User)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.RequestPasswordReset(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if err := client.RequestPasswordReset(context.Background(), "not-an-email"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected rejection for bad email, got %v", err)
	}
}

func TestConfirmPasswordResetValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.ConfirmPasswordReset(context.Background(), ConfirmResetRequest{
		UID: "u", Token: "t", NewPassword: "Str0ngpass", ReNewPassword: "different",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected mismatch rejection, got %v", err)
	}

	err = client.ConfirmPasswordReset(context.Background(), ConfirmResetRequest{
		UID: "u", Token: "t", NewPassword: "short", ReNewPassword: "short",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected policy rejection, got %v", err)
	}

	err = client.ConfirmPasswordReset(context.Background(), ConfirmResetRequest{
		UID: "u", Token: "t", NewPassword: "Str0ngpass", ReNewPassword: "Str0ngpass",
	})
	if err != nil {
		t.Fatalf("confirm reset: %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"Str0ngpass": true,
		"short1A":    false,
		"alllower1x": false,
		"ALLUPPER1X": false,
		"NoDigitsHere": false,
	}
	for password, ok := range cases {
		err := ValidatePassword(password)
		if ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", password, err)
		}
		if !ok && err == nil {
			t.Errorf("ValidatePassword(%q) = nil, want error", password)
		}
	}
}
