package http

import "github.com/gofiber/fiber/v2"

// Vistas de listado a las que redirigen las mutaciones exitosas.
const (
	categoriesPath = "/api/categories"
	productsPath   = "/api/products"
	ordersPath     = "/api/orders"
	orderItemsPath = "/api/order-items"
	usersPath      = "/api/users"
)

// redirectTo responde 302 con Location hacia la vista de listado y el recurso afectado como cuerpo.
func redirectTo(c *fiber.Ctx, location string, body any) error {
	c.Location(location)
	return c.Status(fiber.StatusFound).JSON(body)
}
