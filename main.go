package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/visionattend/attendancebackend/config"
	"github.com/visionattend/attendancebackend/database"
	"github.com/visionattend/attendancebackend/handlers"
	"github.com/visionattend/attendancebackend/media"
	"github.com/visionattend/attendancebackend/repository"
	"github.com/visionattend/attendancebackend/services"
	"github.com/visionattend/attendancebackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{filepath.Dir(cfg.DatabasePath)}
	if cfg.SnapshotsPath != "" {
		storagePaths = append(storagePaths, cfg.SnapshotsPath)
	}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	faceRepo := repository.NewFaceRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)

	seedAdminUser(userRepo)

	detector := media.NewFaceDetector(cfg.DetectorConfigPath, cfg.DetectorModelPath)
	embedder := media.NewEmbeddingModel(cfg.EmbeddingModelPath)
	if !embedder.Enabled {
		log.Printf("Warning: embedding model not loaded from %s; recognition is unavailable", cfg.EmbeddingModelPath)
	}
	extractor := media.NewExtractor(detector, embedder)
	defer extractor.Close()

	matcher := services.NewMatcher(cfg.MatchThreshold)
	attendanceService := services.NewAttendanceService(attendanceRepo, time.Duration(cfg.CooldownSeconds)*time.Second)
	recognitionService := services.NewRecognitionService(extractor, matcher, faceRepo, attendanceService)

	camera := media.NewCamera(cfg.CameraDevice, cfg.CaptureFPS)
	captureWorker := workers.NewCaptureWorker(camera, recognitionService, time.Duration(cfg.RecognizeEveryMs)*time.Millisecond)
	defer captureWorker.Stop()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Match threshold: %g, attendance cooldown: %ds", cfg.MatchThreshold, cfg.CooldownSeconds)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	faceHandler := &handlers.FaceHandler{Service: recognitionService, Cfg: cfg}
	attendanceHandler := &handlers.AttendanceHandler{Service: attendanceService}
	authHandler := handlers.NewAuthHandler(userRepo)
	cameraHandler := &handlers.CameraHandler{Worker: captureWorker}

	r.Route("/api", func(r chi.Router) {
		r.Route("/faces", func(r chi.Router) {
			r.Post("/", faceHandler.EnrollFace)
			r.Get("/", faceHandler.ListFaces)
			r.Route("/{name}", func(r chi.Router) {
				r.Put("/", faceHandler.UpdateFace)
				r.Delete("/", faceHandler.DeleteFace)
				r.Post("/rename", faceHandler.RenameFace)
			})
		})

		r.Post("/recognize", faceHandler.Recognize)

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.ListAttendance)
			r.Get("/export", attendanceHandler.ExportAttendance)
			r.Delete("/{id}", attendanceHandler.DeleteAttendance)
		})

		r.Post("/login", authHandler.Login)

		r.Route("/camera", func(r chi.Router) {
			r.Get("/", cameraHandler.CameraStatus)
			r.Post("/start", cameraHandler.StartCamera)
			r.Post("/stop", cameraHandler.StopCamera)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// seedAdminUser creates the initial admin account when ADMIN_PASSWORD is set
// and the username is not taken yet. The password itself is never stored.
func seedAdminUser(users repository.UserRepositoryInterface) {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return
	}
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	if err := users.Create(username, password, "admin"); err != nil {
		log.Printf("Info: admin user %q not seeded: %v", username, err)
		return
	}
	log.Printf("Seeded admin user %q", username)
}
