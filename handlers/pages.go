package handlers

import (
	"net/http"

	"cinelist/api"
	"cinelist/models"
)

// PageInfo describes one navigable page for the caller.
type PageInfo struct {
	Name         models.Page `json:"name"`
	RequiresAuth bool        `json:"requiresAuth"`
	Available    bool        `json:"available"`
}

// Pages lists every page and whether the caller can open it.
func Pages(w http.ResponseWriter, r *http.Request) {
	loggedIn := api.GetUsername(r) != ""

	pages := make([]PageInfo, 0, len(models.Pages))
	for _, p := range models.Pages {
		pages = append(pages, PageInfo{
			Name:         p,
			RequiresAuth: p.RequiresAuth(),
			Available:    loggedIn || !p.RequiresAuth(),
		})
	}
	writeJSON(w, http.StatusOK, pages)
}
