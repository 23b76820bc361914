package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeQuestAPI/handlers"
	"codeQuestAPI/internal/notification"
	"codeQuestAPI/internal/workers"
	"codeQuestAPI/middleware"
	"codeQuestAPI/services"
	"codeQuestAPI/storage"

	_ "net/http/pprof"
)

var (
	dbPool *pgxpool.Pool
	store  storage.EventStore

	userService         *services.UserService
	problemService      *services.ProblemService
	badgeService        *services.BadgeService
	goalService         *services.GoalService
	progressionService  *services.ProgressionService
	submissionService   *services.SubmissionService
	friendshipService   *services.FriendshipService
	activityService     *services.ActivityService
	leaderboardService  *services.LeaderboardService
	notificationService *services.NotificationService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Without DATABASE_URL the server runs on the seeded in-memory store,
	// which is enough for local development against the app.
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("DATABASE_URL not set, using in-memory store")
		store = storage.NewMemoryStore()
	} else {
		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			log.Fatal("Failed to parse database URL:", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatal("Failed to create connection pool:", err)
		}

		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database:", err)
		}

		log.Println("Successfully connected to Postgres")
		store = storage.NewPostgresStore(dbPool)
	}

	if err := storage.Seed(ctx, store); err != nil {
		log.Fatal("Failed to seed store:", err)
	}

	notificationService = services.NewNotificationService(store)
	userService = services.NewUserService(store)
	problemService = services.NewProblemService(store)
	badgeService = services.NewBadgeService(store)
	goalService = services.NewGoalService(store)
	progressionService = services.NewProgressionService(store, badgeService)
	progressionService.SetNotifier(notificationService)
	submissionService = services.NewSubmissionService(store, progressionService)
	friendshipService = services.NewFriendshipService(store)
	friendshipService.SetNotifier(notificationService)
	activityService = services.NewActivityService(store, friendshipService)
	leaderboardService = services.NewLeaderboardService(store, friendshipService)

	fcmProvider, err := notification.NewFCMProvider("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmProvider)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		if dbPool != nil {
			log.Println("Closing database connection pool...")
			dbPool.Close()
		}
	}()

	userHandler := handlers.NewUserHandler(userService)
	problemHandler := handlers.NewProblemHandler(problemService, userService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, userService)
	goalHandler := handlers.NewGoalHandler(goalService, userService)
	badgeHandler := handlers.NewBadgeHandler(badgeService, userService)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService, userService)
	activityHandler := handlers.NewActivityHandler(activityService, userService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, userService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go workers.NewRolloverWorker(goalService, 15*time.Minute).Run(workerCtx)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbPool != nil {
			if err := dbPool.Ping(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "codeQuest-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/stats", userHandler.GetStats).Methods("GET")

	protected.HandleFunc("/problems", problemHandler.ListProblems).Methods("GET")
	protected.HandleFunc("/problems/tags", problemHandler.ListTags).Methods("GET")
	protected.HandleFunc("/problems/mine", problemHandler.ListUserProblems).Methods("GET")
	protected.HandleFunc("/problems/{id}", problemHandler.GetProblem).Methods("GET")

	protected.HandleFunc("/submissions", submissionHandler.Submit).Methods("POST")

	protected.HandleFunc("/goals", goalHandler.GetGoals).Methods("GET")
	protected.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals/rollover", goalHandler.RolloverGoals).Methods("POST")
	protected.HandleFunc("/goals/{id}", goalHandler.UpdateGoal).Methods("PUT")

	protected.HandleFunc("/badges", badgeHandler.GetUserBadges).Methods("GET")

	protected.HandleFunc("/friends", friendshipHandler.ListFriends).Methods("GET")
	protected.HandleFunc("/friends/requests", friendshipHandler.ListRequests).Methods("GET")
	protected.HandleFunc("/friends/requests", friendshipHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/friends/requests/{id}", friendshipHandler.Respond).Methods("PUT")
	protected.HandleFunc("/friends/invite-qr", friendshipHandler.InviteQR).Methods("GET")
	protected.HandleFunc("/friends/invite-qr", friendshipHandler.AcceptInvite).Methods("POST")
	protected.HandleFunc("/friends/{id}", friendshipHandler.RemoveFriend).Methods("DELETE")

	protected.HandleFunc("/activity", activityHandler.GetFeed).Methods("GET")

	protected.HandleFunc("/leaderboard", leaderboardHandler.Global).Methods("GET")
	protected.HandleFunc("/leaderboard/friends", leaderboardHandler.Friends).Methods("GET")

	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "X-Invite-Token"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
