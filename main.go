// Command dungeon-run starts the Dungeon Run game server.
//
// Commands:
//  1. "serve" (default) – runs the HTTP server exposing the REST API and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "generate" – prints the dungeon a difficulty and seed produce, as JSON
//  4. "export-difficulties" – writes the difficulty presets as editable YAML overrides
//  5. "version" – prints version information
//
// Every flag can also be set from the environment (see each flag's help) and
// a .env file in the working directory is loaded at startup.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/dungeon-run-game/api"
	"github.com/wricardo/dungeon-run-game/game/config"
	"github.com/wricardo/dungeon-run-game/game/engine"
	"github.com/wricardo/dungeon-run-game/game/highscore"
	"github.com/wricardo/dungeon-run-game/game/service"
	"github.com/wricardo/dungeon-run-game/game/session"
	"github.com/wricardo/dungeon-run-game/telemetry"
	"github.com/wricardo/dungeon-run-game/transport/mcp"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Dungeon Run Server"
)

const cleanupInterval = time.Hour

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "dungeon-run",
		Usage:   "multiplayer dungeon crawl server",
		Version: Version,
		Flags:   serveFlags(),
		Action:  runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with REST API and MCP endpoint (default)",
				Flags:  serveFlags(),
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run MCP stdio server, starting an internal HTTP API if none is reachable",
				Flags:  mcpFlags(),
				Action: runMCP,
			},
			{
				Name:  "generate",
				Usage: "Print the dungeon generated for a difficulty and seed as JSON",
				Flags: []cli.Flag{
					difficultyDirFlag(),
					&cli.StringFlag{Name: "difficulty", Value: "easy", Usage: "difficulty key"},
					&cli.StringFlag{Name: "seed", Required: true, Usage: "generation seed (a session id in play)"},
				},
				Action: runGenerate,
			},
			{
				Name:  "export-difficulties",
				Usage: "Write every difficulty as a YAML override file",
				Flags: []cli.Flag{
					difficultyDirFlag(),
					&cli.StringFlag{Name: "out", Value: "difficulties", Usage: "output directory"},
				},
				Action: runExportDifficulties,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

func difficultyDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "difficulty-dir",
		Usage:   "directory of difficulty override files (built-in presets only when empty)",
		Sources: cli.EnvVars("DIFFICULTY_DIR"),
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		difficultyDirFlag(),
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address for the high score board (in-memory when empty)",
			Sources: cli.EnvVars("REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			Sources: cli.EnvVars("REDIS_PASSWORD"),
		},
		&cli.DurationFlag{
			Name:    "session-retention",
			Value:   24 * time.Hour,
			Usage:   "drop sessions idle for longer than this",
			Sources: cli.EnvVars("SESSION_RETENTION"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			Sources: cli.EnvVars("DEBUG"),
		},
	}
}

func serveFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:    "addr",
			Value:   "localhost:8080",
			Usage:   "HTTP listen address",
			Sources: cli.EnvVars("ADDR"),
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "expose the server through an ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	)
}

func mcpFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:    "api-url",
			Value:   "http://localhost:8080",
			Usage:   "REST API to proxy to when it is reachable",
			Sources: cli.EnvVars("API_URL"),
		},
	)
}

func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// services bundles what the transports need.
type services struct {
	game     service.GameService
	sessions *session.Manager
	close    func()
}

// initializeServices wires the catalog, session store, high score board and
// game service from command flags.
func initializeServices(ctx context.Context, cmd *cli.Command) (*services, error) {
	configManager, err := config.NewManager(cmd.String("difficulty-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(engine.NewEngine(configManager))
	board, closeBoard := newHighScoreBoard(ctx, cmd.String("redis-addr"), cmd.String("redis-password"))

	return &services{
		game:     service.NewGameService(sessionManager, configManager, service.WithHighScores(board)),
		sessions: sessionManager,
		close:    closeBoard,
	}, nil
}

// newHighScoreBoard connects to Redis when an address is given and falls
// back to an in-memory board otherwise.
func newHighScoreBoard(ctx context.Context, addr, password string) (highscore.Board, func()) {
	if addr == "" {
		return highscore.NewMemoryBoard(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("[HIGHSCORE] warning: redis at %s unavailable (%v), using in-memory board", addr, err)
		client.Close()
		return highscore.NewMemoryBoard(), func() {}
	}

	log.Printf("[HIGHSCORE] using redis at %s", addr)
	return highscore.NewRedisBoard(client), func() { client.Close() }
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, retention, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(retention)
		}
	}
}

// newMCPHandler serves MCP JSON-RPC messages over plain HTTP POST.
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
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
	}
}

// runServe starts the HTTP server with the REST API and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	addr := cmd.String("addr")
	log.Printf("Starting %s v%s", AppName, Version)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, Version)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}()

	svc, err := initializeServices(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.close()

	go sessionCleanupRoutine(ctx, svc.sessions, cmd.Duration("session-retention"), cleanupInterval)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svc.game))
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcp.NewClient("http://"+addr)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runMCP runs an MCP stdio server. It reuses the API at --api-url when it
// answers its health check; otherwise it starts an internal HTTP API bound to
// a random loopback port and targets that.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	baseURL := cmd.String("api-url")
	log.Printf("Checking for external API server at %s...", baseURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/api/health")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.close()
		go sessionCleanupRoutine(ctx, svc.sessions, cmd.Duration("session-retention"), cleanupInterval)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{Handler: api.NewServer(svc.game)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + internalAddr
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	configManager, err := config.NewManager(cmd.String("difficulty-dir"))
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	def, rules, err := configManager.Difficulty(cmd.String("difficulty"))
	if err != nil {
		return err
	}

	dungeon := engine.GenerateDungeon(def, rules, cmd.String("seed"))

	encoder := json.NewEncoder(cmd.Root().Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dungeon)
}

func runExportDifficulties(ctx context.Context, cmd *cli.Command) error {
	configManager, err := config.NewManager(cmd.String("difficulty-dir"))
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	outDir := cmd.String("out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, def := range configManager.List() {
		_, rules, err := configManager.Difficulty(def.Key)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, def.Key+".yaml")
		if err := config.SaveFile(path, &config.DifficultyFile{DifficultyDefinition: def, Rules: rules}); err != nil {
			return fmt.Errorf("failed to export %s: %w", def.Key, err)
		}
		fmt.Fprintf(cmd.Root().Writer, "wrote %s\n", path)
	}
	return nil
}
