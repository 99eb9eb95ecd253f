package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/enhance"
	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/facerecog"
	"github.com/photovault/photovault/internal/montage"
	"github.com/photovault/photovault/internal/rectdetect"
	"github.com/photovault/photovault/internal/storage"
	"github.com/photovault/photovault/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the PhotoVault web server.
The server exposes the processing pipeline as a JSON API: face detection
and recognition, the person gallery, photo enhancement, scanned-page
extraction and montage composition.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// buildServices wires the pipeline components from configuration.
func buildServices(cfg *config.Config) (web.Services, error) {
	store, err := storage.FromConfig(cfg)
	if err != nil {
		return web.Services{}, fmt.Errorf("initializing storage: %w", err)
	}

	detector := facedetect.FromConfig(cfg.Faces)
	if !detector.Available() {
		fmt.Println("Warning: no face detection backend configured, detection will return no faces")
	}

	gallery := facerecog.NewGallery(store, cfg.Gallery.Path)
	if err := gallery.Load(); err != nil {
		return web.Services{}, fmt.Errorf("loading face gallery: %w", err)
	}
	fmt.Printf("Face gallery loaded: %d people\n", gallery.Count())

	return web.Services{
		Store:    store,
		Detector: detector,
		Gallery:  gallery,
		Rect:     rectdetect.New(cfg.Detect.MaxDetectPixels, cfg.Detect.MaxExtractPixels),
		Enhancer: enhance.New(nil),
		Composer: montage.New(nil),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	services, err := buildServices(cfg)
	if err != nil {
		return err
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, services)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting PhotoVault API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
