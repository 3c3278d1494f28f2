package bootstrap

import (
	"context"
	"fmt"

	"github.com/dealdesk/diligence/internal/config"
	"github.com/dealdesk/diligence/internal/core/ports"
	"github.com/dealdesk/diligence/internal/core/usecase"
	"github.com/dealdesk/diligence/internal/infrastructure/agent"
	natsevents "github.com/dealdesk/diligence/internal/infrastructure/events/nats"
	"github.com/dealdesk/diligence/internal/infrastructure/export"
	"github.com/dealdesk/diligence/internal/infrastructure/repository/postgres"
	"github.com/dealdesk/diligence/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Findings       ports.FindingService
	Contradictions ports.ContradictionService
	Gaps           ports.GapService
	Chat           ports.ChatService
	Exports        ports.ExportService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	findingRepo := postgres.NewFindingRepository(db)
	contradictionRepo := postgres.NewContradictionRepository(db)
	gapRepo := postgres.NewGapRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)

	publisher, err := natsevents.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsevents.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.PublisherConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	agentClient := agent.New(cfg.AgentURL, agent.Options{
		APIKey:             cfg.AgentAPIKey,
		ResilienceExecutor: resilience.NewExecutor(resilience.AgentConfig()),
	})

	renderer := export.NewRenderer()

	return &App{
		Config: cfg,

		Findings:       usecase.NewFindingUseCase(findingRepo, publisher),
		Contradictions: usecase.NewContradictionUseCase(contradictionRepo, findingRepo, publisher),
		Gaps:           usecase.NewGapUseCase(gapRepo, publisher),
		Chat:           usecase.NewChatUseCase(agentClient, conversationRepo),
		Exports:        usecase.NewExportUseCase(findingRepo, contradictionRepo, gapRepo, renderer),

		closeFn: func() {
			publisher.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
