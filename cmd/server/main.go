package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/oauth2/google"
	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/video-converter/internal/cleanup"
	"github.com/codebuildervaibhav/video-converter/internal/convert"
	"github.com/codebuildervaibhav/video-converter/internal/handlers"
	"github.com/codebuildervaibhav/video-converter/internal/storage"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Buckets struct {
		Input  string `yaml:"input"`
		Output string `yaml:"output"`
	} `yaml:"buckets"`

	Storage struct {
		ProcessingDir string `yaml:"processing_dir"`
		DownloadDir   string `yaml:"download_dir"`
		Database      string `yaml:"database"`
	} `yaml:"storage"`

	Transcoder struct {
		Binary string `yaml:"binary"`
	} `yaml:"transcoder"`

	Google struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"google"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB         int `yaml:"max_file_size_mb"`
		StatusIntervalSeconds int `yaml:"status_interval_seconds"`
	} `yaml:"limits"`
}

func main() {
	// Load configuration
	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure scratch directories exist
	if err := cleanup.EnsureDirs(config.Storage.ProcessingDir, config.Storage.DownloadDir); err != nil {
		log.Fatalf("Failed to create scratch directories: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")

	ctx := context.Background()

	// Credential probe: log which identity the Google clients will use.
	// Absence is a warning; the store client below is what actually gates
	// serving.
	if creds, err := google.FindDefaultCredentials(ctx, gcs.ScopeReadWrite); err != nil {
		log.Printf("WARNING: no default Google credentials detected: %v", err)
	} else {
		log.Printf("Using Google project: %s", creds.ProjectID)
	}

	// Object store client. A failed client is fatal before serving; no
	// request handler ever sees a half-initialized store.
	store, err := storage.NewGCSStore(ctx, config.Google.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}
	defer store.Close()
	log.Printf("Object store ready. Input: gs://%s, Output: gs://%s",
		config.Buckets.Input, config.Buckets.Output)

	// Conversion history database
	db, err := storage.NewMetadataDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Transcoder and orchestrator
	transcoder := convert.NewFFmpegTranscoder(config.Transcoder.Binary)
	orchestrator := convert.NewOrchestrator(
		store,
		transcoder,
		db,
		config.Buckets.Input,
		config.Buckets.Output,
		config.Storage.ProcessingDir,
	)

	// Cleanup scheduler
	sweeper := cleanup.NewScheduler(
		[]string{config.Storage.ProcessingDir, config.Storage.DownloadDir},
		config.Cleanup.IntervalMinutes,
		config.Cleanup.MaxAgeHours,
	)
	sweeper.Start()
	defer sweeper.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	convertHandler := handlers.NewConvertHandler(orchestrator, config.Limits.MaxFileSizeMB)
	downloadHandler := handlers.NewDownloadHandler(store, config.Buckets.Output, config.Storage.DownloadDir)
	statusHandler := handlers.NewStatusHandler(store, config.Buckets.Output,
		time.Duration(config.Limits.StatusIntervalSeconds)*time.Second)

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.SendString(indexPage)
	})

	app.Post("/convert", convertHandler.Handle)
	app.Get("/download_options/:identifier", downloadHandler.Options)
	app.Get("/download/video/:filename", downloadHandler.Video)
	app.Get("/download/transcription/:filename", downloadHandler.Transcription)

	// WebSocket route
	app.Get("/ws/status/:identifier", websocket.New(statusHandler.Handle))

	// Conversion history
	app.Get("/conversions", func(c *fiber.Ctx) error {
		limit := 50 // Default limit
		records, err := db.ListConversions(limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(records)
	})

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /convert                        - Convert an uploaded video")
	log.Println("   GET  /download_options/:identifier   - Check artifact availability")
	log.Println("   GET  /download/video/:filename       - Download converted video")
	log.Println("   GET  /download/transcription/:filename - Download transcript")
	log.Println("   GET  /ws/status/:identifier          - Availability stream")
	log.Println("   GET  /conversions                    - Conversion history")
	log.Println("   GET  /logs                           - View server logs")
	log.Println("   GET  /health                         - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// indexPage is the minimal upload form.
const indexPage = `<!DOCTYPE html>
<html>
<head><title>Video Converter</title></head>
<body>
  <h1>Video Converter</h1>
  <form action="/convert" method="post" enctype="multipart/form-data">
    <input type="file" name="video" accept="video/*" required>
    <select name="format">
      <option value="mp4">mp4</option>
      <option value="mov">mov</option>
      <option value="avi">avi</option>
      <option value="mkv">mkv</option>
      <option value="webm">webm</option>
    </select>
    <button type="submit">Convert</button>
  </form>
</body>
</html>`

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
