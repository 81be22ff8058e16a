// Command townservice starts the town service: the HTTP server exposing the
// towns REST API, the per-town WebSocket endpoint, and an /mcp HTTP endpoint.
//
// Flags control host/port, debug logging, version output, and optional ngrok
// tunneling for easy external access during development. Twilio video
// credentials come from the environment (see package config); without them
// the server issues development tokens that no video backend will accept.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"townservice/api"
	"townservice/config"
	"townservice/town/engine"
	"townservice/town/registry"
	"townservice/town/service"
	"townservice/transport/mcp"
	"townservice/transport/websocket"
	"townservice/video"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Town Service"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 0, "HTTP server port (overrides PORT env var)")
	host         = flag.String("host", "", "HTTP server host (overrides HOST env var)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// main parses flags, initializes services, and starts the server.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}

	log.Printf("Starting %s v%s", AppName, Version)

	townService, towns := initializeServices(cfg)
	runHTTPServer(cfg, townService, towns)
}

// initializeServices wires the video provider, town store, and town service.
// The store is returned alongside the service because the WebSocket endpoint
// resolves sessions directly against town controllers.
func initializeServices(cfg *config.Config) (service.TownService, *registry.Store) {
	var provider engine.VideoTokenProvider
	if cfg.HasTwilioCredentials() {
		twilio, err := video.NewTwilioVideo(cfg.TwilioAccountSID, cfg.TwilioAPIKeySID, cfg.TwilioAPIKeySecret, cfg.VideoTokenTTL)
		if err != nil {
			log.Fatalf("Failed to create Twilio video provider: %v", err)
		}
		provider = twilio
	} else {
		log.Println("WARNING: Twilio credentials not configured, issuing development video tokens")
		provider = video.NewInsecureTokenProvider()
	}

	towns := registry.NewStore(provider)
	return service.NewTownService(towns), towns
}

// runHTTPServer starts the HTTP server with the REST API, WebSocket hub, and
// an /mcp proxy endpoint. If ngrok is enabled (via flag or environment), it
// also provisions a public tunnel.
func runHTTPServer(cfg *config.Config, townService service.TownService, towns *registry.Store) {
	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create API server
	apiServer := api.NewServer(townService, towns, hub)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?town=<town_id>&token=<session_token>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if ngrokShouldRun(cfg) {
		g.Go(func() error {
			return runNgrokTunnel(ctx, cfg, mainRouter)
		})
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

// ngrokShouldRun reports whether the tunnel was requested by flag or environment.
func ngrokShouldRun(cfg *config.Config) bool {
	return *ngrokEnabled || cfg.NgrokEnabled
}

// runNgrokTunnel exposes the server through an ngrok tunnel until ctx ends.
func runNgrokTunnel(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = cfg.NgrokAuthToken
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN env var)")
		return nil
	}

	log.Println("Starting ngrok tunnel...")

	domain := *ngrokDomain
	if domain == "" {
		domain = cfg.NgrokDomain
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?town=<town_id>&token=<session_token>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
	return nil
}
