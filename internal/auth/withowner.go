package auth

import (
	"net/http"
	"strings"

	"github.com/clientdesk/clientdesk-backend/internal/users"
	"github.com/gin-gonic/gin"
)

const (
	CtxExternalUID = "external_uid"
	CtxOwnerID     = "owner_id"
)

// WithOwner resolves the requesting owner from the identity headers set by
// the session layer in front of this service, upserts the user row, and
// stores the database id in the gin context. Every repository query below
// this middleware is scoped to that owner id.
func WithOwner(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}

		ownerID, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			ExternalUID:  uid,
			Email:        c.GetHeader("X-User-Email"),
			Name:         c.GetHeader("X-User-Name"),
			Organization: c.GetHeader("X-User-Org"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
				"code":    "INTERNAL",
				"message": "ensure user: " + err.Error(),
			}})
			c.Abort()
			return
		}

		c.Set(CtxExternalUID, uid)
		c.Set(CtxOwnerID, ownerID)
		c.Next()
	}
}

// OwnerID returns the database id of the requesting owner.
func OwnerID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxOwnerID))
}
