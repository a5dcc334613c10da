package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gatherly/api/internal/config"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/search"
	"github.com/gatherly/api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Config     *config.Config
	Cloudinary *cloudinary.Cloudinary

	MongoDBClient *mongo.Client
	EventsRepo    *models.MongodbRepo

	EventService  *services.EventService
	SearchService *services.SearchService
	AssistService *services.AssistService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	embedder search.Embedder,
) *Container {
	eventsRepo := models.MongodbNewRepo(mongoDBClient, cfg.DatabaseName)

	eventService := services.NewEventService(eventsRepo, embedder, cld)
	searchService := services.NewSearchService(eventsRepo, embedder)
	assistService := services.NewAssistService(cfg.ModelAPIKey, cfg.ChatModel)

	return &Container{
		Logger:        logger,
		Config:        cfg,
		Cloudinary:    cld,
		MongoDBClient: mongoDBClient,
		EventsRepo:    eventsRepo,
		EventService:  eventService,
		SearchService: searchService,
		AssistService: assistService,
	}
}
