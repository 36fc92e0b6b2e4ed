// Package server runs the local preview server: it serves the built
// site, watches the source tree, and pushes a live-reload message to
// connected browsers after every successful rebuild. Preview builds
// always include drafts.
package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"stanza/internal/builder"
)

// BuildFunc performs one full site build with the given options.
type BuildFunc func(builder.BuildOptions) error

// Run builds the site, starts watching for changes, and serves the
// output directory on the given port until the process is stopped.
func Run(port int, outputDir string, watchPaths []string, buildFunc BuildFunc, opts builder.BuildOptions) error {
	opts.IncludeDrafts = true
	opts.CleanDestination = true
	if err := buildFunc(opts); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := newHub()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	addWatch := func(dir string) {
		dir = filepath.Clean(dir)
		if watchedDirs[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Could not watch directory", slog.String("dir", dir), slog.Any("error", err))
			return
		}
		slog.Debug("Watching directory", slog.String("dir", dir))
		watchedDirs[dir] = true
	}

	for _, path := range watchPaths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}

		if info.IsDir() {
			if err := filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					addWatch(walkPath)
				}
				return nil
			}); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", path, err)
			}
		} else {
			// For files, watch the parent directory. This survives editors
			// that save via rename-and-replace.
			addWatch(filepath.Dir(path))
		}
	}

	opts.CleanDestination = false
	go watchForChanges(watcher, hub, buildFunc, opts)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})

	fileServer := http.FileServer(http.Dir(outputDir))
	mux.Handle("/", liveReloadWrapper(fileServer))

	addr := fmt.Sprintf(":%d", port)
	slog.Info("Serving site", slog.String("url", "http://localhost"+addr))
	fmt.Println("Press Ctrl+C to stop")
	return http.ListenAndServe(addr, mux)
}

func watchForChanges(watcher *fsnotify.Watcher, hub *Hub, buildFunc BuildFunc, opts builder.BuildOptions) {
	var lastBuildTime time.Time
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if time.Since(lastBuildTime) > debounceDuration {
					time.Sleep(100 * time.Millisecond)

					slog.Info("Change detected, rebuilding", slog.String("path", event.Name))
					if err := buildFunc(opts); err != nil {
						slog.Error("Rebuild failed", slog.Any("error", err))
					} else {
						slog.Debug("Site rebuilt, triggering reload")
						hub.broadcastMessage([]byte("reload"))
					}
					lastBuildTime = time.Now()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", slog.Any("error", err))
		}
	}
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		bodyBytes := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			w.Write(bodyBytes)
			return
		}

		injectedBody := bytes.Replace(bodyBytes, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injectedBody)))
		w.WriteHeader(iw.statusCode)
		w.Write(injectedBody)
	})
}

type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection lost. Restart 'stanza serve'.");
    };
  })();
</script>
`
