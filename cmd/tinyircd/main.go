package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dalnet/tinyircd/internal/config"
	"github.com/dalnet/tinyircd/internal/irc"
	"github.com/dalnet/tinyircd/internal/metrics"
	"github.com/dalnet/tinyircd/internal/storage"
	"github.com/dalnet/tinyircd/internal/transport"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Command line flags
	foreground := flag.Bool("x", false, "Run in foreground (don't daemonize)")
	configPath := flag.String("c", "./config.yaml", "Path to configuration file")
	envPath := flag.String("e", ".env", "Path to optional environment file")
	showVersion := flag.Bool("v", false, "Show version information and exit")
	showVersionLong := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("tinyircd version %s\n", version)
		fmt.Printf("Built: %s\n", buildDate)
		fmt.Printf("Commit: %s\n", gitCommit)
		os.Exit(0)
	}

	if version != "dev" {
		irc.Version = "tinyircd-" + version
	}
	irc.BuildDate = buildDate
	irc.GitCommit = gitCommit

	if !*foreground {
		daemonize()
		return
	}

	if err := writePIDFile(); err != nil {
		log.Printf("Warning: could not write PID file: %v", err)
	}

	if err := run(*configPath, *envPath); err != nil {
		log.Fatalf("%v", err)
	}
}

// daemonize re-executes the binary detached from the terminal, in two
// steps the way a double fork does
func daemonize() {
	// Second step: we are the detached child, so record our pid
	if os.Getenv("TINYIRCD_DAEMON") == "1" {
		if err := writePIDFile(); err != nil {
			log.Printf("Warning: could not write PID file: %v", err)
		}

		fmt.Printf("Now becoming a daemon\nMy pid is %d, this has been written to pid.txt\n", os.Getpid())

		// Re-exec once more with -x so the last process runs the server
		args := append(os.Args, "-x")
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Env = os.Environ()

		if err := cmd.Start(); err != nil {
			log.Fatalf("Failed to start daemon: %v", err)
		}
		os.Exit(0)
	}

	// First step: start a child marked as the daemon, then leave
	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Env = append(os.Environ(), "TINYIRCD_DAEMON=1")

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to fork: %v", err)
	}

	// Parent exits
	os.Exit(0)
}

// writePIDFile records the current pid in pid.txt in the working directory
func writePIDFile() error {
	pid := os.Getpid()
	return os.WriteFile("pid.txt", []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

func run(configPath, envPath string) error {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	if !filepath.IsAbs(configPath) {
		wd, _ := os.Getwd()
		configPath = filepath.Join(wd, configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	motd, err := storage.LoadMOTD(cfg.DataDir)
	if err != nil {
		log.Printf("Warning: could not load MOTD: %v", err)
		motd = &storage.MOTD{}
	}

	audit, err := storage.LoadAuditLog(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	ln, err := transport.Listen(cfg.Listen)
	if err != nil {
		return err
	}
	defer ln.Close()

	server, err := irc.New(cfg, ln)
	if err != nil {
		return err
	}
	server.MOTD = motd.Lines
	server.Audit = audit

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsListen != "" {
		go func() {
			log.Printf("Serving metrics on %s", cfg.MetricsListen)
			if err := metrics.Serve(ctx, cfg.MetricsListen); err != nil {
				log.Printf("Metrics endpoint failed: %v", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- ln.Serve(context.Background())
	}()

	log.Printf("%s listening on %s as %s", irc.Version, ln.Addr(), cfg.ServerName)

	runErr := make(chan error, 1)
	go func() {
		runErr <- server.Run(ctx, ln.Events())
	}()

	select {
	case err := <-serveErr:
		// the engine must not keep running against a dead listener
		stop()
		<-runErr
		if err != nil {
			return fmt.Errorf("listener failed: %w", err)
		}
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Printf("Shutting down")
	}
	return nil
}
