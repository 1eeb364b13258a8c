package middleware

import "github.com/gofiber/fiber/v2"

// resolveError runs the app's error handler so that the final status code is
// known to the middleware that observes it. The error is consumed.
func resolveError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
