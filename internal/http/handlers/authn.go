package handlers

import "net/http"

// AnonymousSignIn mints an anonymous session token. Every visitor may sign
// in; the token gates mutations only.
func (api *API) AnonymousSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	token := api.sessions.SignInAnonymously()
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}
