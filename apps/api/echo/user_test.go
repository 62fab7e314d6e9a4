package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/upendo/core/user"
	emailsvc "github.com/trezcool/upendo/services/email"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	createUser(t, env.usrRepo, "Ana", "ana@test.tld", "LePassword123", user.MemberRoles, true)
	createUser(t, env.usrRepo, "Gone", "gone@test.tld", "LePassword123", user.MemberRoles, false)

	tests := []httpTest{
		{
			name:     "happy path",
			body:     []byte(`{"email": "ana@test.tld", "password": "LePassword123"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "email is case-insensitive",
			body:     []byte(`{"email": "ANA@Test.TLD", "password": "LePassword123"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "who@test.tld", "password": "LePassword123"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "ana@test.tld", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     []byte(`{"email": "gone@test.tld", "password": "LePassword123"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "missing fields",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "this field is required", "password": "this field is required"}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse: %v", err)
				}
				if resp.Token == "" {
					t.Error("empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	usr := createUser(t, env.usrRepo, "Ana", "ana@test.tld", "LePassword123", user.MemberRoles, true)

	successData := marchallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	tests := []httpTest{
		{
			name:     "known email sends the reset mail",
			body:     []byte(`{"email": "ana@test.tld"}`),
			wantCode: http.StatusOK,
			wantData: successData,
			extra:    1, // emails sent
		},
		{
			name:     "unknown email does not leak account existence",
			body:     []byte(`{"email": "who@test.tld"}`),
			wantCode: http.StatusOK,
			wantData: successData,
			extra:    0,
		},
		{
			name:     "invalid email",
			body:     []byte(`{"email": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "email must be a valid email address"}`),
			extra:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = emailsvc.SentMessages[:0]

			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if wantSent := tt.extra.(int); len(emailsvc.SentMessages) != wantSent {
				t.Errorf("sent %d emails; want %d", len(emailsvc.SentMessages), wantSent)
			}
		})
	}

	// the link in the mail carries a working uid/token pair
	t.Run("confirm resets the password", func(t *testing.T) {
		body := marchallObj(t, ConfirmPasswordResetRequest{
			UID:             user.EncodeUID(usr),
			Token:           makeTestResetToken(t, env, usr),
			Password:        "NewPassword456",
			PasswordConfirm: "NewPassword456",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "ana@test.tld", "password": "NewPassword456"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("login with the new password failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

// makeTestResetToken requests a password reset and plucks the one-time token
// out of the captured email.
func makeTestResetToken(t *testing.T, env testEnv, usr user.User) string {
	t.Helper()

	emailsvc.SentMessages = emailsvc.SentMessages[:0]
	if err := env.usrSvc.RequestPasswordReset(context.Background(), usr.Email); err != nil {
		t.Fatalf("RequestPasswordReset() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("SentMessages len = %d; want 1", len(emailsvc.SentMessages))
	}
	data, ok := emailsvc.SentMessages[0].TemplateData.(struct {
		User  user.User
		UID   string
		Token string
	})
	if !ok {
		t.Fatalf("unexpected TemplateData: %T", emailsvc.SentMessages[0].TemplateData)
	}
	return data.Token
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "root@test.tld", "LePassword123", user.AllRoles, true)
	member := createUser(t, env.usrRepo, "Ana", "ana@test.tld", "LePassword123", user.MemberRoles, true)

	tests := []httpTest{
		{
			name:     "anonymous",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "members may not list users",
			token:    getToken(t, member),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			extra:    2, // users returned
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			env.app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var usrs []user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &usrs); err != nil {
				t.Fatalf("unmarshalling users: %v", err)
			}
			if len(usrs) != tt.extra.(int) {
				t.Errorf("got %d users; want %d", len(usrs), tt.extra.(int))
			}
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "root@test.tld", "LePassword123", user.AllRoles, true)
	ana := createUser(t, env.usrRepo, "Ana", "ana@test.tld", "LePassword123", user.MemberRoles, true)
	eve := createUser(t, env.usrRepo, "Eve", "eve@test.tld", "LePassword123", user.MemberRoles, true)

	tests := []httpTest{
		{
			name:     "own profile",
			path:     "/v1/users/" + ana.ID,
			token:    getToken(t, ana),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, ana),
		},
		{
			name:     "admin reads any profile",
			path:     "/v1/users/" + ana.ID,
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, ana),
		},
		{
			// account existence is not leaked to other members
			name:     "members may not read others",
			path:     "/v1/users/" + ana.ID,
			token:    getToken(t, eve),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
