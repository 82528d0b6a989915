package router

import (
	"net/http"
	"strings"

	"chat-app-agent/internal/api"
	"chat-app-agent/internal/api/endpoints"
	"chat-app-agent/internal/api/middleware"
)

// StateRoutes exposes the agent's live state. Reads are open; anything that
// mutates goes through the server's auth middleware.
func StateRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		prefix := strings.TrimRight(prefix, "/")
		state := endpoints.NewStateEndpoints(s.State())
		auth := s.Auth()

		mux.HandleFunc(prefix+"/rooms", s.MakeHTTPHandleFunc(state.Rooms))
		mux.HandleFunc(prefix+"/rooms/active/messages", s.MakeHTTPHandleFunc(state.ActiveRoomMessages))
		mux.HandleFunc(prefix+"/discussions", s.MakeHTTPHandleFunc(state.Discussions))
		mux.HandleFunc(prefix+"/discussions/active/messages", s.MakeHTTPHandleFunc(state.ActiveDiscussionMessages))
		mux.HandleFunc(prefix+"/route", s.MakeHTTPHandleFunc(state.Route, auth))
		mux.HandleFunc(prefix+"/visibility", s.MakeHTTPHandleFunc(state.Visibility, auth))
		mux.HandleFunc(prefix+"/preferences/sound", s.MakeHTTPHandleFunc(state.SoundPreference, writesOnly(auth)))
		mux.HandleFunc(prefix+"/status", s.MakeHTTPHandleFunc(state.Status, writesOnly(auth)))
	}
}

// writesOnly applies auth to every method except GET.
func writesOnly(auth middleware.Middleware) middleware.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		guarded := auth(next)
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				next(w, r)
				return
			}
			guarded(w, r)
		}
	}
}
