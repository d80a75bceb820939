package http

import (
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// Session headers set by the authenticating gateway in front of the service.
const (
	HeaderActorID     = "X-Actor-ID"
	HeaderActorRole   = "X-Actor-Role"
	HeaderWorkspaceID = "X-Workspace-ID"
)

const (
	actorContextKey     = "orderflow.actor"
	workspaceContextKey = "orderflow.workspace"
)

// RequireActor resolves the acting user from the session headers and
// answers 401 when they are absent or carry an unknown role.
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			roleName := c.Request().Header.Get(HeaderActorRole)
			if id == "" || strings.TrimSpace(roleName) == "" {
				return problemUnauthenticated.WithDetail("X-Actor-ID and X-Actor-Role headers are required")
			}

			role, err := order.ParseRole(roleName)
			if err != nil {
				return problemUnauthenticated.WithDetail(err.Error())
			}
			actor, err := order.NewActor(id, role)
			if err != nil {
				return problemUnauthenticated.WithDetail(err.Error())
			}
			c.Set(actorContextKey, actor)

			if raw := strings.TrimSpace(c.Request().Header.Get(HeaderWorkspaceID)); raw != "" {
				workspaceID, parseErr := kernel.UUIDFromString(raw)
				if parseErr != nil {
					return badRequest(parseErr)
				}
				c.Set(workspaceContextKey, workspaceID)
			}

			return next(c)
		}
	}
}

func actorFrom(c echo.Context) (order.Actor, bool) {
	actor, ok := c.Get(actorContextKey).(order.Actor)
	return actor, ok
}

func workspaceFrom(c echo.Context) (kernel.UUID, bool) {
	id, ok := c.Get(workspaceContextKey).(kernel.UUID)
	return id, ok
}
