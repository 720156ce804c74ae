// Package v1 exposes the assistant over a JSON HTTP API.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/pbhm215/everyday-pda/assistant"
	"github.com/pbhm215/everyday-pda/internal/profile"
	"github.com/pbhm215/everyday-pda/store"
)

type APIV1Service struct {
	Orchestrator *assistant.Orchestrator
	Profile      *profile.Profile
	Store        *store.Store
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, orchestrator *assistant.Orchestrator) *APIV1Service {
	return &APIV1Service{
		Orchestrator: orchestrator,
		Profile:      profile,
		Store:        store,
	}
}

// RegisterRoutes mounts all v1 routes below /api/v1.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/answer", s.Answer)
	g.GET("/morning", s.Morning)
	g.GET("/proactivity", s.Proactivity)

	g.POST("/users", s.CreateUser)
	g.GET("/users", s.ListUsernames)
	g.GET("/users/:username", s.GetUser)
	g.PATCH("/users/:username", s.UpdateUser)
}
