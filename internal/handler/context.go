package handler

import (
	"net/http"

	"arbor/internal/httputil"
)

// requireAccount extracts the authenticated account id from the request
// context. It writes the 401 response itself when the id is missing.
func requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID := httputil.GetAccountID(r)
	if accountID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "account not authenticated")
		return "", false
	}
	return accountID, true
}
