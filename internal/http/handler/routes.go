package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"staffingapi/internal/http/middleware"
	"staffingapi/internal/service"
	"staffingapi/internal/storage"
)

// Dependencies is everything RegisterRoutes wires into handlers.
// Storage may be nil when document uploads are disabled.
type Dependencies struct {
	DB      *sql.DB
	Storage storage.Storage
	service.Services
	Auth    *middleware.Authenticator
	Limiter *middleware.RateLimiter
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.DB, d.Storage))
	app.Get("/healthz", LivenessProbe())

	auth := d.Auth.Required()
	limit := d.Limiter.Handler()
	s := d.Services

	api := app.Group("/api")

	// Public directory.
	api.Get("/agencies", SearchAgencies(s.Agencies))
	api.Get("/agencies/:slug", GetAgency(s.Agencies))
	api.Get("/agencies/:slug/compliance", PublicCompliance(s.Compliance))
	api.Get("/trades", ListTrades(s.Agencies))
	api.Get("/regions", ListRegions(s.Agencies))

	api.Post("/agencies/:slug/claim", auth, limit, SubmitClaim(s.Claims))
	api.Get("/agencies/:slug/claim-status", auth, ClaimStatus(s.Claims))

	messages := api.Group("/messages", auth)
	messages.Get("/conversations", ListConversations(s.Conversations))
	messages.Post("/conversations", limit, CreateConversation(s.Conversations))
	messages.Get("/conversations/:id", GetConversation(s.Conversations))
	messages.Post("/conversations/:id/messages", limit, SendMessage(s.Conversations))
	messages.Patch("/conversations/:id/read", MarkConversationRead(s.Conversations))
	messages.Get("/unread-count", UnreadCount(s.Conversations))

	admin := api.Group("/admin", auth)
	admin.Get("/claims", ListClaims(s.Claims))
	admin.Post("/claims/:id/approve", ApproveClaim(s.Claims))
	admin.Post("/claims/:id/reject", RejectClaim(s.Claims))

	dashboard := api.Group("/dashboard", auth)
	dashboard.Get("/compliance", OwnerCompliance(s.Compliance))
	dashboard.Put("/compliance", UpdateCompliance(s.Compliance))
	dashboard.Post("/compliance/:type/document", limit, UploadComplianceDocument(s.Compliance))
}
