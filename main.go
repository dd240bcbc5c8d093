package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AdventSphere/advent-sphere/handlers"
	"github.com/AdventSphere/advent-sphere/internal/bucket"
	"github.com/AdventSphere/advent-sphere/internal/workers"
	"github.com/AdventSphere/advent-sphere/middleware"
	"github.com/AdventSphere/advent-sphere/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	storageBucket       *bucket.Client
	roomService         *services.RoomService
	itemService         *services.ItemService
	calendarItemService *services.CalendarItemService
	userService         *services.UserService
	aiService           *services.AIService
	retentionWorker     *workers.RetentionWorker
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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

	storageBucket, err = bucket.New(ctx, "./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize storage bucket:", err)
	}
	log.Println("Storage bucket initialized successfully")

	roomService = services.NewRoomService(dbPool, storageBucket)
	itemService = services.NewItemService(dbPool, storageBucket)
	calendarItemService = services.NewCalendarItemService(dbPool)
	userService = services.NewUserService(dbPool)

	aiService, err = services.NewAIService(ctx, dbPool)
	if err != nil {
		log.Printf("Warning: Could not initialize AI generation: %v", err)
		aiService = nil
	} else {
		log.Println("AI generation initialized successfully")
	}

	retentionWorker = workers.NewRetentionWorker(dbPool, storageBucket)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	roomHandler := handlers.NewRoomHandler(roomService)
	itemHandler := handlers.NewItemHandler(itemService)
	calendarItemHandler := handlers.NewCalendarItemHandler(calendarItemService)
	userHandler := handlers.NewUserHandler(userService)
	aiHandler := handlers.NewAIHandler(aiService)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(10, 40)
	go rateLimiter.CleanupVisitors()

	retentionWorker.Start()
	defer retentionWorker.Stop()

	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "advent-sphere-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rooms", roomHandler.CreateRoom).Methods("POST")
	api.HandleFunc("/rooms/{id}", roomHandler.GetRoom).Methods("GET")
	api.HandleFunc("/rooms/{id}", roomHandler.UpdateRoom).Methods("PATCH")
	api.HandleFunc("/rooms/{id}", roomHandler.DeleteRoom).Methods("DELETE")
	api.HandleFunc("/rooms/{id}/qr", roomHandler.GetRoomQr).Methods("GET")

	api.HandleFunc("/rooms/{roomId}/calendarItems", calendarItemHandler.ListCalendarItems).Methods("GET")
	api.HandleFunc("/rooms/{roomId}/calendarItems", calendarItemHandler.CreateCalendarItem).Methods("POST")
	api.HandleFunc("/rooms/{roomId}/calendarItems/inventory", calendarItemHandler.ListInventory).Methods("GET")
	api.HandleFunc("/rooms/{roomId}/calendarItems/placed", calendarItemHandler.ListPlaced).Methods("GET")
	api.HandleFunc("/rooms/{roomId}/calendarItems/{id}", calendarItemHandler.PatchCalendarItem).Methods("PATCH")
	api.HandleFunc("/rooms/{roomId}/calendarItems/{id}", calendarItemHandler.DeleteCalendarItem).Methods("DELETE")

	api.HandleFunc("/items", itemHandler.ListItems).Methods("GET")
	api.HandleFunc("/items", itemHandler.CreateItem).Methods("POST")
	api.HandleFunc("/items/user-images", itemHandler.UploadUserImage).Methods("POST")
	api.HandleFunc("/items/{id}", itemHandler.GetItem).Methods("GET")
	api.HandleFunc("/items/{id}", itemHandler.PatchItem).Methods("PATCH")
	api.HandleFunc("/items/{id}", itemHandler.DeleteItem).Methods("DELETE")

	api.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")

	api.HandleFunc("/ai/createPhoto", aiHandler.CreatePhoto).Methods("POST")
	api.HandleFunc("/ai/createPrompt", aiHandler.CreatePrompt).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
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
		// Image generation can take most of a minute.
		WriteTimeout: 90 * time.Second,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
