package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/postpress/internal/config"
	"github.com/Bitlatte/postpress/internal/logfields"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds it when posts change",
	Long: `The serve command performs an initial build, then serves the output
directory over HTTP. The posts, assets and template directories are
watched and every change triggers a full rebuild.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, appConfig, serverPort)
	},
}

func serve(ctx context.Context, cfg config.Config, port int) error {
	slog.Info("Performing initial build")
	if _, err := runBuildProcess(cfg); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	out := cfg.OutputPath()
	for _, dir := range watchRoots(cfg) {
		addWatchTree(watcher, dir, out)
	}

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		slog.Info("Rebuilding site due to changes")
		if _, err := runBuildProcess(cfg); err != nil {
			slog.Error("Rebuild failed", logfields.Error(err))
		}
	}
	go watchLoop(ctx, watcher, out, rebuild)

	fileServer := http.FileServer(http.Dir(out))
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fileServer.ServeHTTP(w, r)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving site", logfields.Path(out), slog.String("url", fmt.Sprintf("http://localhost:%d", port)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// watchRoots lists the directories whose changes affect the build.
func watchRoots(cfg config.Config) []string {
	roots := []string{cfg.PostsPath(), cfg.AssetsPath()}
	if tpl := cfg.TemplateFile(); tpl != "" {
		roots = append(roots, filepath.Dir(tpl))
	}
	return roots
}

// addWatchTree watches root and every directory below it, except skip and
// its subtree. The build rewrites skip, so watching it would rebuild forever.
func addWatchTree(watcher *fsnotify.Watcher, root, skip string) {
	if _, err := os.Stat(root); err != nil {
		slog.Debug("Directory not found, not watching", logfields.Path(root))
		return
	}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Error walking directory", logfields.Path(path), logfields.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skip != "" && config.Within(skip, path) {
			return filepath.SkipDir
		}
		if watchErr := watcher.Add(path); watchErr != nil {
			slog.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(watchErr))
		}
		return nil
	})
	if err != nil {
		slog.Warn("Error setting up watch", logfields.Path(root), logfields.Error(err))
	}
}

// watchLoop calls rebuild once changes settle. Events at or below skip are
// the build's own output and are ignored.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, skip string, rebuild func()) {
	var buildTimer *time.Timer
	defer func() {
		if buildTimer != nil {
			buildTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if skip != "" && config.Within(skip, event.Name) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				addWatchTree(watcher, event.Name, skip)
			}
			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, rebuild)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	addPathFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
