package webhost

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"ripmedia/internal/config"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/paths"
	"ripmedia/internal/urls"
)

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.broker.Subscribe()
	defer s.broker.Unsubscribe(sub)
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type enqueueRequest struct {
	URLs []string `json:"urls"`
}

type enqueueResponse struct {
	Queued int               `json:"queued"`
	Items  []model.ItemState `json:"items"`
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read body failed")
		return
	}
	var list []string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req enqueueRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		list = urls.SplitLines(strings.Join(req.URLs, "\n"))
	} else {
		list = urls.SplitLines(string(body))
	}
	// Entries are taken literally; list files are a CLI feature only since
	// the server must not read host files on behalf of a request.
	if len(list) == 0 {
		s.writeError(w, http.StatusBadRequest, "no URLs provided")
		return
	}

	queued, err := s.manager.Enqueue(list)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, enqueueResponse{Queued: len(queued), Items: queued})
}

type openRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || strings.TrimSpace(req.Path) == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	target, err := config.ExpandPath(strings.TrimSpace(req.Path))
	if err != nil || !paths.Within(s.outputDir, target) {
		s.logger.Warn("open request outside output directory",
			logging.String(logging.FieldEventType, "webhost_open_rejected"),
			logging.String("path", req.Path),
		)
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := s.open(target); err != nil {
		s.logger.Warn("open failed",
			logging.String(logging.FieldEventType, "webhost_open_failed"),
			logging.String("path", target),
			logging.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, historyResponse{Items: []history.Entry{}, Batches: []history.Batch{}})
		return
	}
	opts := history.ListOptions{
		BatchID: strings.TrimSpace(r.URL.Query().Get("batch")),
		Status:  model.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = limit
	}
	items, err := s.history.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	batches, err := s.history.Batches(r.Context(), opts.Limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []history.Entry{}
	}
	if batches == nil {
		batches = []history.Batch{}
	}
	s.writeJSON(w, http.StatusOK, historyResponse{Items: items, Batches: batches})
}

// RevealInFileManager opens the folder containing path with the desktop's
// file manager.
func RevealInFileManager(path string) error {
	target := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		target = filepath.Dir(path)
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("explorer", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
