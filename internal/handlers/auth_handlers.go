package handlers

import (
	"log"
	"net/http"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// SignIn handles POST /api/auth/signin
// It exchanges the admin credentials for a bearer token.
func (h *Handlers) SignIn(c *gin.Context) {
	if h.Issuer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Admin authentication is not configured"})
		return
	}

	var input models.SignInInput
	if !bindJSON(c, &input) {
		return
	}

	ok, err := h.Admin.Matches(input.Username, input.Password)
	if err != nil {
		fail(c, err, "")
		return
	}
	if !ok {
		log.Printf("[auth] Failed sign-in for %q from %s", input.Username, c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token, err := h.Issuer.GenerateToken(input.Username)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int64(h.Issuer.TTL().Seconds()),
	})
}
