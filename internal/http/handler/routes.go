package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkgate/internal/auth"
	"linkgate/internal/config"
	"linkgate/internal/service"
)

// RegisterRoutes attaches the gateway to every path and method of the provided Fiber app.
// cfg must already be validated; it is captured by value.
func RegisterRoutes(app *fiber.App, cfg config.GatewayConfig, svc service.GatewayService) {
	app.All("/*", Gateway(cfg, svc))
}

// Gateway returns the per-request dispatcher.
//
// Behavior:
// - A request whose Authorization header matches the configured pair is refused with 401.
// - GET and PUT redirect (301) to a signed read or write link for the object at the request path.
// - HEAD answers 200 when the object exists and 404 otherwise.
// - Any other method gets 405.
//
// Responses written here carry no body. Errors go to the app's ErrorHandler.
func Gateway(cfg config.GatewayConfig, svc service.GatewayService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h := c.Request().Header.Peek(fiber.HeaderAuthorization); len(h) > 0 && auth.Authenticated(cfg, h) {
			c.Status(fiber.StatusUnauthorized)
			return nil
		}

		switch c.Method() {
		case fiber.MethodGet:
			return redirect(c, svc, service.OperationGet)
		case fiber.MethodPut:
			return redirect(c, svc, service.OperationPut)
		case fiber.MethodHead:
			if svc.Exists(c.UserContext(), c.Path()) {
				c.Status(fiber.StatusOK)
			} else {
				c.Status(fiber.StatusNotFound)
			}
			return nil
		default:
			c.Status(fiber.StatusMethodNotAllowed)
			return nil
		}
	}
}

func redirect(c *fiber.Ctx, svc service.GatewayService, op service.Operation) error {
	link, err := svc.Link(c.UserContext(), op, c.Path())
	if err != nil {
		return err
	}
	return c.Redirect(link, fiber.StatusMovedPermanently)
}
