package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"triviamon/internal/battle"
	"triviamon/internal/cache"
	"triviamon/internal/config"
	"triviamon/internal/repository"
	"triviamon/internal/service"
	"triviamon/internal/transport/rest"
	"triviamon/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	srvCfg := config.LoadServerConfig()
	battleCfg := config.DefaultBattleConfig()
	log.Printf("Battle config: deadline=%s grace=%s jitter=±%d%%",
		battleCfg.QuestionDeadline, battleCfg.ReconnectGrace, battleCfg.DamageJitterPercent)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(srvCfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(srvCfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(srvCfg.RedisURI, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	questionRepo := repository.NewQuestionRepo(db)
	pokemonRepo := repository.NewPokemonRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	matchRepo := repository.NewMatchRepo(db)

	// Initialize caches
	seenCache := cache.NewSeenCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	matchCache := cache.NewMatchCache(rdb)
	queueCache := cache.NewQueueCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(playerRepo, pokemonRepo, inventoryRepo, srvCfg.JWTSecret)
	questionSvc := service.NewQuestionService(questionRepo, seenCache)
	rosterSvc := service.NewRosterService(pokemonRepo)
	inventorySvc := service.NewInventoryService(inventoryRepo)
	resultsSvc := service.NewResultsService(matchRepo, playerRepo, leaderboard, matchCache)

	// Battle manager owns all live matches
	manager := battle.NewManager(battleCfg, questionSvc, rosterSvc, inventorySvc, resultsSvc)

	// Inject broadcaster (wsHub implements battle.Broadcaster)
	manager.SetBroadcaster(wsHub)

	mmSvc := service.NewMatchmakingService(queueCache, matchCache, manager)

	// Create router with container
	container := &rest.Container{
		AuthService:        authSvc,
		MatchmakingService: mmSvc,
		ResultsService:     resultsSvc,
		Manager:            manager,
		WSHub:              wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + srvCfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", srvCfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/guest")
		log.Println("  POST/GET/DELETE /v1/matchmaking/queue")
		log.Println("  GET  /v1/matches/{id}")
		log.Println("  POST /v1/matches/{id}/forfeit")
		log.Println("  GET  /v1/matches/{id}/leaderboard")
		log.Println("  GET  /v1/leaderboard")
		log.Println("  GET  /v1/players/me/matches")
		log.Println("  WS   /v1/ws/matches/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
