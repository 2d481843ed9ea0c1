package server

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"cinelist/api"
	"cinelist/handlers"
	"cinelist/services/lists"
	"cinelist/services/search"
	"cinelist/services/sessions"
	"cinelist/utils"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Sessions    *sessions.Service
	Lists       *lists.Service
	Search      *search.Service
	RateLimiter *api.IPRateLimiter
	Logger      *log.Logger
	LogFS       afero.Fs
	LogFile     string
}

// NewRouter registers every route on top of the base router.
func NewRouter(d Deps) *mux.Router {
	r := utils.NewRouter()

	sessionH := handlers.NewSessionHandler(d.Sessions)
	authH := handlers.NewAuthHandler(d.Sessions)
	searchH := handlers.NewSearchHandler(d.Search)
	listsH := handlers.NewListsHandler(d.Lists, d.Sessions)
	logsH := handlers.NewLogsHandler(d.Logger, d.LogFS, d.LogFile)

	r.HandleFunc("/api/session", sessionH.Connect).Methods(http.MethodPost, http.MethodOptions)

	// Anonymous callers may browse pages and public lists.
	open := r.PathPrefix("/api").Subrouter()
	open.Use(api.OptionalSessionMiddleware(d.Sessions))
	open.HandleFunc("/pages", handlers.Pages).Methods(http.MethodGet, http.MethodOptions)
	open.HandleFunc("/lists/visible", listsH.Visible).Methods(http.MethodGet, http.MethodOptions)

	withSession := r.PathPrefix("/api").Subrouter()
	withSession.Use(api.SessionMiddleware(d.Sessions))
	withSession.HandleFunc("/session", sessionH.Disconnect).Methods(http.MethodDelete, http.MethodOptions)
	withSession.HandleFunc("/auth/signup", authH.Signup).Methods(http.MethodPost, http.MethodOptions)
	withSession.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost, http.MethodOptions)
	withSession.HandleFunc("/auth/logout", authH.Logout).Methods(http.MethodPost, http.MethodOptions)
	withSession.HandleFunc("/auth/me", authH.Me).Methods(http.MethodGet, http.MethodOptions)
	withSession.HandleFunc("/lists/{name}", listsH.Get).Methods(http.MethodGet, http.MethodOptions)

	loggedIn := r.PathPrefix("/api").Subrouter()
	loggedIn.Use(api.SessionMiddleware(d.Sessions), api.RequireAuthMiddleware())
	loggedIn.HandleFunc("/lists", listsH.Mine).Methods(http.MethodGet, http.MethodOptions)
	loggedIn.HandleFunc("/lists/{name}/movies", listsH.AddMovie).Methods(http.MethodPost, http.MethodOptions)
	loggedIn.HandleFunc("/logs", logsH.Tail).Methods(http.MethodGet, http.MethodOptions)

	searchRoute := http.Handler(http.HandlerFunc(searchH.Search))
	if d.RateLimiter != nil {
		searchRoute = api.RateLimitHandler(d.RateLimiter, searchRoute)
	}
	loggedIn.Handle("/search", searchRoute).Methods(http.MethodGet, http.MethodOptions)

	return r
}
