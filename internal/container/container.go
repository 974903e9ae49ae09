// Package container wires the portal's dependencies together
package container

import (
	"evoting-portal/internal/backend"
	"evoting-portal/internal/config"
	"evoting-portal/internal/handler"
	"evoting-portal/internal/middleware"
	"evoting-portal/internal/service"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

// Container holds every constructed component of the portal
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	Redis  *redis.Client

	Backend  *backend.Client
	Sessions *session.Store
	Guard    *middleware.Guard

	Voting    *service.VotingService
	Results   *service.ResultsService
	Incidents *service.IncidentService
	Voters    *service.VoterService
	Dashboard *service.DashboardService
	Admin     *service.AdminService

	AuthHandler      *handler.AuthHandler
	VotingHandler    *handler.VotingHandler
	ResultsHandler   *handler.ResultsHandler
	IncidentHandler  *handler.IncidentHandler
	VoterHandler     *handler.VoterHandler
	DashboardHandler *handler.DashboardHandler
	AdminHandler     *handler.AdminHandler
	HealthHandler    *handler.HealthHandler
}

// New builds the dependency graph bottom-up
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	redisClient, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		return nil, err
	}

	backendClient := backend.New(cfg.APIBaseURL, cfg.MediaBaseURL(), session.TokenFromContext, log)
	sessions := session.NewStore(redisClient, backendClient, log)
	guard := middleware.NewGuard(sessions, cfg.SessionCookie, cfg.SecureCookies, log)
	responder := handler.NewResponder(sessions, guard, log)

	voting := service.NewVotingService(backendClient, redisClient, log)
	results := service.NewResultsService(backendClient, redisClient, log)
	incidents := service.NewIncidentService(backendClient, log)
	voters := service.NewVoterService(backendClient, log)
	dashboard := service.NewDashboardService(backendClient, voting, log)
	admin := service.NewAdminService(backendClient, redisClient, log)

	return &Container{
		Config: cfg,
		Logger: log,
		Redis:  redisClient,

		Backend:  backendClient,
		Sessions: sessions,
		Guard:    guard,

		Voting:    voting,
		Results:   results,
		Incidents: incidents,
		Voters:    voters,
		Dashboard: dashboard,
		Admin:     admin,

		AuthHandler:      handler.NewAuthHandler(sessions, guard, responder, log),
		VotingHandler:    handler.NewVotingHandler(voting, responder, log),
		ResultsHandler:   handler.NewResultsHandler(results, responder, log),
		IncidentHandler:  handler.NewIncidentHandler(incidents, responder, log),
		VoterHandler:     handler.NewVoterHandler(voters, responder, log),
		DashboardHandler: handler.NewDashboardHandler(dashboard, responder, log),
		AdminHandler:     handler.NewAdminHandler(admin, responder, log),
		HealthHandler:    handler.NewHealthHandler(redisClient, responder, log),
	}, nil
}

// Close releases the container's resources
func (c *Container) Close() error {
	c.Results.Stop()
	return c.Redis.Close()
}
