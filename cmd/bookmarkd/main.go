// ABOUTME: Entry point for the bookmarkd bookmark server
// ABOUTME: Dispatches the serve, init, health, list and import commands

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/bookmarkd/internal/config"
	"github.com/2389/bookmarkd/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                 _                        _       _
| |__   ___   ___ | | ___ __ ___   __ _ _ __| | ____| |
| '_ \ / _ \ / _ \| |/ / '_ ' _ \ / _' | '__| |/ / _' |
| |_) | (_) | (_) |   <| | | | | | (_| | |  |   < (_| |
|_.__/ \___/ \___/|_|\_\_| |_| |_|\__,_|_|  |_|\_\__,_|
`

// getConfigPath returns the path to the config file.
// Priority: BOOKMARKD_CONFIG env var > XDG_CONFIG_HOME/bookmarkd/config.yaml > ~/.config/bookmarkd/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BOOKMARKD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bookmarkd", "config.yaml")
}

// getDataPath returns the path to the bookmarkd data directory.
// Priority: XDG_DATA_HOME/bookmarkd > ~/.local/share/bookmarkd
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "bookmarkd")
}

func usage() {
	fmt.Println("Usage: bookmarkd <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                        Start the bookmark server")
	fmt.Println("  init                         Create a new config file interactively")
	fmt.Println("  health                       Check server health")
	fmt.Println("  list [--category NAME]       Print stored bookmarks")
	fmt.Println("  import FILE                  Add bookmarks from a json, yaml or toml file")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "list":
		err = runList(ctx, os.Args[2:], os.Stdout)
	case "import":
		err = runImport(ctx, os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		stderrf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stdout)

	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Storage:   %s", cfg.Storage.Backend)
	if cfg.Storage.Path != "" && cfg.Storage.Backend != config.BackendMemory {
		gray.Printf(" (%s)", cfg.Storage.Path)
	}
	fmt.Println()
	fmt.Println()

	logger.Info("starting bookmarkd",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"storage", cfg.Storage.Backend,
	)

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("bookmarkd configuration setup")
	fmt.Println("=============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Storage Configuration ---")
	backend := prompt(reader, "Storage backend (file/sqlite/memory)", config.BackendFile)
	var storagePath string
	switch backend {
	case config.BackendSQLite:
		storagePath = prompt(reader, "SQLite database path", filepath.Join(defaultDataPath, "bookmarks.db"))
	case config.BackendMemory:
	default:
		storagePath = prompt(reader, "Bookmark file path (.json/.yaml/.toml)", filepath.Join(defaultDataPath, "bookmarks.json"))
	}

	fmt.Println("\n--- Session Configuration ---")
	ttl := prompt(reader, "Session idle timeout", config.DefaultSessionTTL.String())
	secure := prompt(reader, "Serve cookies over HTTPS only?", "no")

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	secret, err := generateSecret()
	if err != nil {
		return fmt.Errorf("generating session secret: %w", err)
	}

	var cfg strings.Builder
	cfg.WriteString("# bookmarkd configuration\n")
	cfg.WriteString("# Generated by bookmarkd init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("storage:\n")
	cfg.WriteString(fmt.Sprintf("  backend: %q\n", backend))
	if storagePath != "" {
		cfg.WriteString(fmt.Sprintf("  path: %q\n", storagePath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  secret: %q\n", secret))
	cfg.WriteString(fmt.Sprintf("  ttl: %q\n", ttl))
	cfg.WriteString(fmt.Sprintf("  secure_cookies: %t\n", isYes(secure)))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	// Refuse to write a config that serve would reject
	if _, err := config.Parse([]byte(cfg.String())); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the session secret
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if storagePath != "" {
		dataDir := filepath.Dir(storagePath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		fmt.Printf("\nData directory: %s\n", dataDir)
	}

	fmt.Printf("Config written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  bookmarkd serve\n")

	return nil
}

// generateSecret returns a random session signing secret
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func isYes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
