package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Addresses shown on the contact page
const (
	SubmissionsEmail = "submissions@kavyapath.in"
	SupportEmail     = "support@kavyapath.in"
)

// PageHandler serves the static information pages
type PageHandler struct{}

// NewPageHandler creates a new PageHandler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// About handles GET /about
func (h *PageHandler) About(c *gin.Context) {
	page(c, http.StatusOK, "about.html", gin.H{"Title": "About Kavyapath"})
}

// Contact handles GET /contact
func (h *PageHandler) Contact(c *gin.Context) {
	page(c, http.StatusOK, "contact.html", gin.H{
		"Title":            "Contact Us",
		"SubmissionsEmail": SubmissionsEmail,
		"SupportEmail":     SupportEmail,
	})
}
