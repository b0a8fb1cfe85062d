package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Announcer broadcasts a change made by a user to their households.
type Announcer interface {
	Announce(userID, eventType string)
}

// ChangeFeed announces successful writes under a resource group as
// "<resource>.<created|updated|deleted>".
func ChangeFeed(a Announcer, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if a == nil || c.Writer.Status() >= http.StatusMultipleChoices || len(c.Errors) > 0 {
			return
		}
		userID := c.GetString("userID")
		if userID == "" {
			return
		}

		var action string
		switch c.Request.Method {
		case http.MethodPost:
			action = "created"
			if c.Param("id") != "" {
				action = "updated"
			}
		case http.MethodPut, http.MethodPatch:
			action = "updated"
		case http.MethodDelete:
			action = "deleted"
		default:
			return
		}
		a.Announce(userID, resource+"."+action)
	}
}
