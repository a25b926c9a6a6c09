package web

import (
	"net/http"

	"compreg/internal/adapters/http/middleware"
	"compreg/internal/application/orchestrators"
)

// handleSignup handles POST /api/signup.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.SignupInput
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := orchestrators.ExecuteSignup(r.Context(), input, orchestrators.SignupDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusCreated, map[string]string{"account_id": id})
}

// handleLogin handles POST /api/login. On success it sets the session cookie
// for browser clients and returns a bearer token for API clients.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		TokenIssuer:  tokens,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sessionToken, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, sessionToken)

	writeData(w, http.StatusOK, map[string]string{
		"account_id": result.AccountID,
		"name":       result.Name,
		"email":      result.Email,
		"role":       result.Role,
		"token":      result.Token,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	writeMessage(w, "logged out")
}

// handleMe handles GET /api/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSessionFromContext(r.Context())

	acct, err := stores.AccountStore.GetByID(r.Context(), session.AccountID)
	if err != nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	writeData(w, http.StatusOK, map[string]string{
		"account_id": acct.ID,
		"name":       acct.Name,
		"email":      acct.Email,
		"role":       acct.Role,
	})
}
