package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/boardwalk-tui/boardwalk/internal/auth"
	"github.com/boardwalk-tui/boardwalk/internal/cache"
	"github.com/boardwalk-tui/boardwalk/internal/config"
	"github.com/boardwalk-tui/boardwalk/internal/prefs"
	"github.com/boardwalk-tui/boardwalk/internal/remote"
	"github.com/boardwalk-tui/boardwalk/internal/state"
	"github.com/boardwalk-tui/boardwalk/internal/ui"
)

// Options configure the Boardwalk application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/boardwalk/prefs.toml
	RefreshEvery int    // seconds between background refreshes; zero uses default
}

// Run boots the Boardwalk TUI until the context is cancelled or the
// user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logf, closeLog := openLog(cfg.LogPath)
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)

	keychain, err := auth.Open(cfg.TokenPath)
	if err != nil {
		return fmt.Errorf("open keychain: %w", err)
	}
	if keychain.Token() == "" {
		return fmt.Errorf("not logged in; run `boardwalk login` first")
	}
	if keychain.Expired(time.Now()) {
		return fmt.Errorf("session expired; run `boardwalk login` to re-authenticate")
	}

	client, err := remote.NewClient(cfg.APIBase, keychain)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	// A broken cache file should not keep the board from opening; fall
	// back to in-memory persistence and say so in the log.
	var kv state.KV
	if disk, err := cache.Open(cfg.CachePath); err != nil {
		logf("cache unavailable, state will not survive restart: %v", err)
		kv = cache.NewMemory()
	} else {
		defer disk.Close()
		kv = disk
	}

	store := state.New(state.Options{
		Service:    client,
		Cache:      kv,
		FlushDelay: cfg.FlushDelay,
		Logf:       logf,
	})
	defer store.Close()

	// Restore the previous session's tree so the board paints before
	// the first fetch lands.
	if err := store.Load(); err != nil {
		logf("restore cached state: %v", err)
	}

	interval := defaultRefreshInterval
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}
	StartRefresher(ctx, store, interval, logf)

	uiOpts := ui.Options{
		Context:   ctx,
		Store:     store,
		Keychain:  keychain,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}

// openLog directs application logging to the configured file. The TUI
// owns the terminal, so stderr logging would tear the frame.
func openLog(path string) (func(format string, args ...any), func()) {
	if path == "" {
		return func(string, ...any) {}, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return func(string, ...any) {}, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return func(string, ...any) {}, func() {}
	}
	logger := log.New(f, "", log.LstdFlags)
	return logger.Printf, func() { f.Close() }
}
