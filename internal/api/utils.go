package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"chat-app-agent/internal/api/middleware"
	"chat-app-agent/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc runs f on the request queue behind CORS and logging,
// with any extra middleware (usually auth) applied inside them.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, extra ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)
		job := queue.Job{
			Name: r.Method + " " + r.URL.Path,
			Fn:   func() error { return f(w, r) },
			Errc: errc,
		}

		var err error
		if s.requestQueueManager == nil {
			err = f(w, r)
		} else if s.requestQueueManager.EnqueueJob(job) {
			err = <-errc
		} else {
			err = &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "Server is shutting down"}
		}
		s.writeError(w, r, err)
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(s.cors),
		middleware.Logging(s.logger),
	}
	middlewares = append(middlewares, extra...)

	return middleware.Chain(baseHandler, middlewares...)
}

func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.ErrorLog != nil {
			s.logger.Warn().Err(httpErr.ErrorLog).Str("path", r.URL.Path).Int("status", httpErr.StatusCode).Msg("request failed")
		}
		_ = WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
		return
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled request error")
	_ = WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
}
