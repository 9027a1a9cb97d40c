package handler

import (
	"github.com/gofiber/fiber/v2"

	"goout/internal/schema"
	"goout/internal/service"
	"goout/internal/storage"
)

// Deps are the collaborators RegisterRoutes wires into handlers.
type Deps struct {
	Services []service.ResourceService
	Registry *schema.Registry
	Store    storage.Storage
	Health   Pinger
	// Auth guards POST and DELETE when set.
	Auth fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Every kind
// gets the same five routes under /api/<path>.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.Health))
	app.Get("/healthz", LivenessProbe())
	if d.Store != nil {
		app.Get("/"+storage.PublicPrefix+"/*", ServeMedia(d.Store))
	}

	api := app.Group("/api")
	if d.Registry != nil {
		api.Get("/schema", SchemaIndex(d.Registry))
		api.Get("/schema/:kind", SchemaKind(d.Registry))
	}

	guard := d.Auth
	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}

	for _, svc := range d.Services {
		r := api.Group("/" + svc.Kind().Path)
		r.Get("/", ListResources(svc))
		r.Post("/", guard, CreateResource(svc))
		r.Get("/user/:userId", ListByOwner(svc))
		r.Get("/:id", GetResource(svc))
		r.Delete("/:id", guard, DeleteResource(svc))
	}
}
