package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/adapter/ftp"
	"github.com/marmos91/rootshare/pkg/adapter/web"
	"github.com/marmos91/rootshare/pkg/adapter/webdav"
	"github.com/marmos91/rootshare/pkg/config"
	"github.com/marmos91/rootshare/pkg/server"
)

const usage = `rootshare - share a directory tree over HTTP, FTP and WebDAV

Usage:
  rootshare <command> [flags]

Commands:
  init    Write a default configuration file
  start   Start all services
  roots   Print the roots the web service offers

Run 'rootshare <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "start":
		err = runStart(os.Args[2:])
	case "roots":
		err = runRoots(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration file")
	path := fs.String("config", "", "Write to this path instead of the default location")
	_ = fs.Parse(args)

	if *path != "" {
		if err := config.InitConfigToPath(*path, *force); err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", *path)
		return nil
	}

	written, err := config.InitConfig(*force)
	if err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", written)
	return nil
}

func runRoots(args []string) error {
	fs := flag.NewFlagSet("roots", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	reg := config.CreateRegistry(cfg)
	def := reg.Default()
	for _, root := range reg.List() {
		marker := " "
		if root.Path == def.Path {
			marker = "*"
		}
		fmt.Printf("%s %-8s %s\n", marker, root.Label, root.Path)
	}
	return nil
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := config.CreateRegistry(cfg)
	root := reg.Default().Path
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Serving root: %s", root)

	m := config.InitializeMetrics(cfg)
	if m.Server != nil {
		go func() {
			if err := m.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	orch := server.New(root,
		server.WithBindAddress(cfg.Server.BindAddress),
		server.WithStopTimeout(cfg.Server.ShutdownTimeout),
		server.WithMetrics(m.ServiceMetrics),
	)
	for _, a := range config.CreateAdapters(cfg, reg, m) {
		if err := orch.AddAdapter(a); err != nil {
			return err
		}
	}

	handles, err := orch.Start(ctx)
	if err != nil {
		return err
	}

	printBanner(cfg.Server.BindAddress, root, handles)

	running := 0
	for _, h := range handles {
		if h.State == server.StateRunning {
			running++
		}
	}
	if running == 0 {
		_ = orch.Stop(context.Background())
		return errors.New("no service could be started")
	}

	logger.Info("Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := orch.Stop(stopCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// printBanner shows where each service can be reached.
func printBanner(bindAddress, root string, handles []server.HandleSnapshot) {
	host := bindAddress
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = "localhost"
	}

	fmt.Println("rootshare - multi-protocol file server")
	fmt.Printf("  Root: %s\n", root)
	for _, h := range handles {
		addr := net.JoinHostPort(host, strconv.Itoa(h.BoundPort))
		switch h.State {
		case server.StateRunning:
			fmt.Printf("  %-7s %s\n", h.Protocol, serviceURL(h.Protocol, addr))
		default:
			fmt.Printf("  %-7s %s (port %d): %v\n", h.Protocol, h.State, h.RequestedPort, h.Err)
		}
	}
}

func serviceURL(protocol, addr string) string {
	switch protocol {
	case web.Protocol, webdav.Protocol:
		return "http://" + addr + "/"
	case ftp.Protocol:
		return "ftp://" + addr + "/"
	}
	return addr
}
