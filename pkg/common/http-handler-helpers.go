package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
)

// HttpError carries the status code a handler wants to respond with.
type HttpError struct {
	Status  int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

func NewHttpError(status int, message string) error {
	return &HttpError{Status: status, Message: message}
}

type JsonHandlerFunc func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error

func JsonHandler(fn JsonHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId, _ := HandleSessionCookie(w, r)
		w.Header().Set("Content-Type", "application/json")
		err := fn(w, r, sessionId, jsoncompat.NewEncoder(w))
		if err != nil {
			log.Printf("Error handling request %s %s: %v", r.Method, r.URL.Path, err)
			status := http.StatusInternalServerError
			var httpErr *HttpError
			if errors.As(err, &httpErr) {
				status = httpErr.Status
			}
			http.Error(w, err.Error(), status)
		}
	}
}

func DecodeJson[V any](r *http.Request) (V, error) {
	var v V
	if err := jsoncompat.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, NewHttpError(http.StatusBadRequest, "invalid json body: "+err.Error())
	}
	return v, nil
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
