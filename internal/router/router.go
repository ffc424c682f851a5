package router

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/yuzuru-dev/fedilike/backend/internal/handlers"
	"github.com/yuzuru-dev/fedilike/backend/internal/lock"
	"github.com/yuzuru-dev/fedilike/backend/internal/middleware"
	"github.com/yuzuru-dev/fedilike/backend/internal/models"
	"github.com/yuzuru-dev/fedilike/backend/internal/repositories"
	"github.com/yuzuru-dev/fedilike/backend/internal/services"
	"github.com/yuzuru-dev/fedilike/backend/pkg/config"
	"github.com/yuzuru-dev/fedilike/backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns a stop function for the background delivery workers.
func SetupRoutes(e *echo.Echo, db *config.DB, firebaseApp *firebase.App, cfg *config.Config) func() {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.Account{},
		&models.Status{},
		&models.Favourite{},
		&models.EmojiReaction{},
		&models.CustomEmoji{},
		&models.DomainBlock{},
		&models.Relay{},
		&models.FriendDomain{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	accountRepo := repositories.NewPostgresAccountRepository(db.Postgres)
	statusRepo := repositories.NewPostgresStatusRepository(db.Postgres)
	favouriteRepo := repositories.NewPostgresFavouriteRepository(db.Postgres)
	reactionRepo := repositories.NewPostgresEmojiReactionRepository(db.Postgres)
	emojiRepo := repositories.NewPostgresCustomEmojiRepository(db.Postgres)
	blockRepo := repositories.NewPostgresDomainBlockRepository(db.Postgres)
	relayRepo := repositories.NewPostgresRelayRepository(db.Postgres)
	friendRepo := repositories.NewPostgresFriendDomainRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	archive := repositories.NewMongoActivityArchive(db.Mongo.Database("fedilike"))

	// --- Initialize Services ---
	dedup := services.NewDedupGate(db.Redis, 6*time.Hour)
	resolver := services.NewEmojiResolver(emojiRepo, blockRepo,
		services.NewHTTPRemoteFetcher(10*time.Second), cfg.LocalDomain, cfg.WebDomain)
	locker := lock.NewLocker(db.Redis, cfg.LockWait, cfg.LockLease)
	grouped := services.NewGroupedReactionService(reactionRepo, db.Redis, 12*time.Hour)
	stream := services.NewStreamPublisher(db.Redis)
	var push services.PushSender
	if firebaseApp != nil {
		push = firebaseApp
	}
	notifier := services.NewNotifier(notificationRepo, push)
	delivery := services.NewDeliveryWorker(cfg.DeliveryQueueSize, 15*time.Second)
	stopDelivery := delivery.Start(cfg.DeliveryWorkers)

	likeService := services.NewLikeService(services.ReactionFlags{
		EnableEmojiReaction:        cfg.EnableEmojiReaction,
		ReceiveRemoteEmojiReaction: cfg.ReceiveRemoteEmojiReaction,
		StreamRemoteEmojiReaction:  cfg.StreamRemoteEmojiReaction,
	}, services.LikeServiceDeps{
		Accounts:   accountRepo,
		Statuses:   statusRepo,
		Favourites: favouriteRepo,
		Reactions:  reactionRepo,
		Blocks:     blockRepo,
		Relays:     relayRepo,
		Friends:    friendRepo,
		Dedup:      dedup,
		Resolver:   resolver,
		Locker:     locker,
		Grouped:    grouped,
		Stream:     stream,
		Notifier:   notifier,
		Delivery:   delivery,
	})

	// --- Federation inbox ---
	inboxHandler := handlers.NewInboxHandler(likeService, archive)
	inboxHandler.RegisterInboxRoutes(e, middleware.ActivityContentTypeMiddleware())
	log.Println("Inbox routes configured.")

	// --- Read API ---
	api := e.Group("/api/v1")

	reactionHandler := handlers.NewReactionHandler(grouped, favouriteRepo)
	reactionHandler.RegisterReactionRoutes(api)
	log.Println("Reaction routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	inboxHandler.RegisterArchiveRoutes(api)
	log.Println("Archive routes configured.")

	log.Println("All routes configured.")

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stopDelivery(stopCtx); err != nil {
			log.Printf("Error stopping delivery workers: %v\n", err)
		}
	}
}
