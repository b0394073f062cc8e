package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"steelops/services"
)

// roleHeader carries the caller's role. Session auth itself is provided by
// the deployment's front-proxy; the application only gates capabilities.
const roleHeader = "X-App-Role"

// RequireCapability wraps a handler so it only runs when the caller's role
// carries the capability. Unknown or absent roles are refused.
func RequireCapability(cap services.Capability, next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		role := e.Request.Header.Get(roleHeader)
		if !services.HasCapability(role, cap) {
			return apiError(e, http.StatusForbidden, ErrKindForbidden, "role is not permitted to perform this action")
		}
		return next(e)
	}
}
