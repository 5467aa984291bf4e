package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of SSE event
type EventType string

const (
	EventDocumentsReloaded EventType = "documents-reloaded"
	EventServerError       EventType = "server-error"
)

// Event represents a server-sent event
type Event struct {
	Type EventType              `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventBroker fans events out to the connected SSE clients.
type EventBroker struct {
	clients      map[chan Event]struct{}
	clientsMutex sync.RWMutex
	logger       *slog.Logger
}

func NewEventBroker(logger *slog.Logger) *EventBroker {
	return &EventBroker{
		clients: make(map[chan Event]struct{}),
		logger:  logger,
	}
}

// Subscribe registers a client channel.
func (b *EventBroker) Subscribe() chan Event {
	b.clientsMutex.Lock()
	defer b.clientsMutex.Unlock()

	client := make(chan Event, 10)
	b.clients[client] = struct{}{}
	b.logger.Debug("client subscribed to events", "total_clients", len(b.clients))
	return client
}

// Unsubscribe removes and closes a client channel.
func (b *EventBroker) Unsubscribe(client chan Event) {
	b.clientsMutex.Lock()
	defer b.clientsMutex.Unlock()

	if _, ok := b.clients[client]; !ok {
		return
	}
	delete(b.clients, client)
	close(client)
	b.logger.Debug("client unsubscribed from events", "total_clients", len(b.clients))
}

// Broadcast sends event to every client whose buffer has room. Slow clients
// miss the event rather than stall the others.
func (b *EventBroker) Broadcast(event Event) {
	b.clientsMutex.RLock()
	defer b.clientsMutex.RUnlock()

	b.logger.Debug("broadcasting event", "type", event.Type, "clients", len(b.clients))

	for client := range b.clients {
		select {
		case client <- event:
		default:
			b.logger.Warn("client not reading events, dropping", "type", event.Type)
		}
	}
}

// ClientCount returns the number of active clients
func (b *EventBroker) ClientCount() int {
	b.clientsMutex.RLock()
	defer b.clientsMutex.RUnlock()
	return len(b.clients)
}

// eventsHandler streams broker events until the client goes away.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, ErrCodeInternal, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.eventBroker.Subscribe()
	defer s.eventBroker.Unsubscribe(events)

	fmt.Fprintf(w, "event: connected\ndata: {\"message\":\"connected\"}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("client disconnected")
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to marshal event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// Watcher reloads the configuration when its file changes and drops cached
// documents when a watched document directory changes. Bursts of filesystem
// events are coalesced into one reload.
type Watcher struct {
	watcher    *fsnotify.Watcher
	server     *Server
	configPath string
	logger     *slog.Logger
	debounce   time.Duration

	mu           sync.Mutex
	dirs         map[string]bool
	timer        *time.Timer
	reloadConfig bool
	reloadDocs   bool
	changedPaths []string
}

// NewWatcher creates a watcher over configPath (may be empty) and dirs.
func NewWatcher(server *Server, configPath string, dirs []string, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		server:   server,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		dirs:     map[string]bool{},
	}
	if configPath != "" {
		if w.configPath, err = filepath.Abs(configPath); err != nil {
			fw.Close()
			return nil, err
		}
	}
	for _, dir := range dirs {
		if err := w.addDir(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if w.dirs[abs] {
		return nil
	}
	if err := w.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	w.dirs[abs] = true
	w.logger.Info("watching document directory", "path", abs)
	return nil
}

// Start begins watching. The config file is watched through its directory
// so editors that replace the file on save are seen.
func (w *Watcher) Start(ctx context.Context) error {
	if w.configPath != "" {
		if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
			return fmt.Errorf("failed to watch config file: %w", err)
		}
		w.logger.Info("started watching config file", "path", w.configPath)
	}

	go w.watch(ctx)
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path, _ := filepath.Abs(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.configPath != "" && path == w.configPath:
		w.reloadConfig = true
	case w.dirs[filepath.Dir(path)]:
		w.reloadDocs = true
	default:
		return
	}
	w.changedPaths = append(w.changedPaths, path)
	w.logger.Debug("watched file changed", "op", event.Op.String(), "path", path)

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(ctx) })
}

// flush applies the pending reloads and broadcasts the outcome.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	reloadConfig, reloadDocs, paths := w.reloadConfig, w.reloadDocs, w.changedPaths
	w.reloadConfig, w.reloadDocs, w.changedPaths = false, false, nil
	w.mu.Unlock()

	if reloadConfig {
		w.logger.Info("reloading configuration")
		if err := w.server.ReloadConfig(ctx); err != nil {
			w.logger.Error("failed to reload config", "err", err)
			w.server.eventBroker.Broadcast(Event{
				Type: EventServerError,
				Data: map[string]interface{}{
					"message": fmt.Sprintf("Failed to reload config: %v", err),
				},
			})
			return
		}
		w.mu.Lock()
		for _, dir := range w.server.WatchDirs() {
			if err := w.addDir(dir); err != nil {
				w.logger.Warn("failed to watch new document directory", "err", err)
			}
		}
		w.mu.Unlock()
	} else if reloadDocs {
		w.server.InvalidateDocuments()
	}

	w.logger.Info("documents reloaded", "paths", len(paths))
	w.server.eventBroker.Broadcast(Event{
		Type: EventDocumentsReloaded,
		Data: map[string]interface{}{
			"timestamp": time.Now().Unix(),
			"config":    reloadConfig,
			"paths":     paths,
		},
	})
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.logger.Info("stopping file watcher")
	return w.watcher.Close()
}
