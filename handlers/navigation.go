package handlers

import "querygpt/models"

const (
	uploadRoute = "/"
	chatRoute   = "/chat"
)

var navItems = []models.NavLink{
	{Label: "Upload Schema", Path: uploadRoute},
	{Label: "Query Assistant", Path: chatRoute},
}

// Navigation returns the shell links with the one matching path marked active.
func Navigation(path string) []models.NavLink {
	links := make([]models.NavLink, len(navItems))
	for i, item := range navItems {
		item.Active = item.Path == path
		links[i] = item
	}
	return links
}
