package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cinelist/api"
	"cinelist/models"
	"cinelist/services/lists"
	"cinelist/services/sessions"
)

type listReader interface {
	Get(name string) (models.MovieList, bool)
	ListsForUser(owner string) []models.MovieList
	VisibleLists(viewer string) []models.MovieList
}

var _ listReader = (*lists.Service)(nil)

type listAdder interface {
	AddToList(id, listName string, privacy models.Privacy, record models.MovieRecord) (models.MovieList, error)
}

var _ listAdder = (*sessions.Service)(nil)

// ListsHandler serves the caller's lists and the shared ones.
type ListsHandler struct {
	lists    listReader
	sessions listAdder
}

func NewListsHandler(store listReader, sessionsSvc listAdder) *ListsHandler {
	return &ListsHandler{lists: store, sessions: sessionsSvc}
}

// AddMovieRequest is the body of POST /api/lists/{name}/movies.
type AddMovieRequest struct {
	Privacy string             `json:"privacy"`
	Movie   models.MovieRecord `json:"movie"`
}

// Mine lists the caller's own lists (the home page).
func (h *ListsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lists.ListsForUser(api.GetUsername(r)))
}

// Visible lists everything the caller may see.
func (h *ListsHandler) Visible(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lists.VisibleLists(api.GetUsername(r)))
}

// Get returns one list if the caller may see it. Hidden lists are reported
// as missing.
func (h *ListsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	list, ok := h.lists.Get(name)
	if !ok || !lists.VisibleTo(list, api.GetUsername(r)) {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AddMovie appends a title to the named list, creating it if needed.
func (h *ListsHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req AddMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	privacy, err := models.ParsePrivacy(req.Privacy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.sessions.AddToList(api.GetSessionID(r), name, privacy, req.Movie)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
