package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/domain/billing"
)

// RequireFeature gates a route on the entitlement resolver: the principal
// must hold the (feature, action) permission under the current subscription
// state. Any resolution failure denies.
func RequireFeature(resolver *billing.Resolver, feature security.Feature, action security.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		principalID, err := id.Parse(user.UserID)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid principal"))
			c.Abort()
			return
		}

		principal := billing.Principal{ID: principalID, Role: user.Role}
		if !resolver.Allowed(c.Request.Context(), principal, feature, action) {
			_ = c.Error(apperror.NewFeatureNotLicensed(string(feature), string(action)))
			c.Abort()
			return
		}

		c.Next()
	}
}
