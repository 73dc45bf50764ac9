package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/app"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/notify"
	"github.com/nhle/projecthub/internal/session"
	"github.com/nhle/projecthub/internal/store"
	syncer "github.com/nhle/projecthub/internal/sync"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "projecthub: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cache, err := store.NewSQLiteStore(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cache.Close()

	client := api.NewClient(cfg.Server.BaseURL, log)

	sess := session.New()
	if sess.Restore() {
		client.SetToken(sess.Token())
		log.Info("restored saved session")
	}

	feed := notify.New()
	refresher := syncer.New(
		client, cache,
		time.Duration(cfg.Server.RefreshIntervalSec)*time.Second,
		log,
	)

	root := app.New(client, sess, feed, refresher, cache, log)
	program := tea.NewProgram(root, tea.WithAltScreen())

	// 401s from in-flight requests land here, off the event loop.
	client.OnUnauthorized(func() {
		program.Send(app.SessionExpiredMsg{})
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// newLogger writes diagnostics to the configured file; the terminal
// belongs to the UI.
func newLogger(path string) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)

	return log, func() { _ = f.Close() }, nil
}
