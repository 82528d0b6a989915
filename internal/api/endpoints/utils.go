package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chat-app-agent/internal/api"
)

type HTTPError = api.HTTPError

type ApiMessageResponse struct {
	Message string `json:"message"`
}

const maxBodyBytes = 64 << 10

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path),
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode %s body: %w", r.URL.Path, err),
		}
	}
	return nil
}

func badRequest(msg string) error {
	return &HTTPError{StatusCode: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) error {
	return &HTTPError{StatusCode: http.StatusNotFound, Message: msg}
}
