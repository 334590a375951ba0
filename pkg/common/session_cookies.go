package common

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const SessionCookieName = "sid"

func setSessionCookie(w http.ResponseWriter, r *http.Request, sessionId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionId,
		Domain:   strings.TrimPrefix(r.Host, "."),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Path:     "/",
	})
}

// HandleSessionCookie returns the session id of the request, issuing a new
// one when the cookie is missing or not a uuid.
func HandleSessionCookie(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), false
		}
	}
	sessionId := uuid.NewString()
	setSessionCookie(w, r, sessionId)
	return sessionId, true
}
