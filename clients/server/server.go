// Package server provides the GoMeme web UI and HTTP API.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/xob0t/GoMeme/pkg/artifact"
	"github.com/xob0t/GoMeme/pkg/chain"
	"github.com/xob0t/GoMeme/pkg/config"
	"github.com/xob0t/GoMeme/pkg/logging"
	"github.com/xob0t/GoMeme/pkg/meme"
	"github.com/xob0t/GoMeme/pkg/provider"
)

//go:embed web/index.html
var webContent embed.FS

const (
	memePrefix     = "/static/memes/"
	maxRequestBody = 1 << 20
	requestTimeout = 3 * time.Minute
)

// Server serves the meme form, the generated artifacts and the JSON API.
type Server struct {
	chain *chain.Chain
	store *artifact.Store
	page  *template.Template
}

// New creates a server around a ready chain and its artifact store.
func New(c *chain.Chain, store *artifact.Store) (*Server, error) {
	page, err := template.ParseFS(webContent, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Server{chain: c, store: store, page: page}, nil
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Web UI.
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("GET "+memePrefix+"{name}", s.handleMeme)

	// API routes.
	mux.HandleFunc("GET /api/styles", s.handleStyles)
	mux.HandleFunc("POST /api/memes", s.handleCreateMeme)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return logging.Requests(mux)
}

// RunServe loads configuration and serves until the listener fails.
func RunServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var configPath, addr string
	fs.StringVar(&configPath, "config", "", "Path to gomeme.yaml (optional)")
	fs.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	fs.StringVar(&addr, "a", "", "Listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	logFile, err := logging.Setup("gomeme", cfg.LogDir)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := chain.Provision(cfg); err != nil {
		return err
	}
	c, store, err := chain.FromConfig(cfg)
	if err != nil {
		return err
	}
	s, err := New(c, store)
	if err != nil {
		return err
	}

	log.Printf("GoMeme UI → http://localhost%s (artifacts=%s mode=%s)", cfg.Addr, store.Dir(), store.Mode())
	return http.ListenAndServe(cfg.Addr, s.Handler())
}

// ── Web UI ──

type pageData struct {
	Styles  []string
	Context string
	Style   string
	Caption string
	MemeURL string
	Error   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{Style: provider.DefaultStyle})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, pageData{Error: "The form could not be read."})
		return
	}

	data := pageData{
		Context: r.PostFormValue("context"),
		Style:   r.PostFormValue("humor_style"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.chain.Run(ctx, data.Context, data.Style)
	if err != nil {
		status, message := classify(err)
		log.Printf("meme failed context=%q style=%q err=%v", data.Context, data.Style, err)
		data.Error = message
		s.renderPage(w, status, data)
		return
	}

	data.Style = res.Style
	data.Caption = res.Caption
	data.MemeURL = memeURL(res.Artifact.Path)
	log.Printf("meme created path=%s lines=%d", res.Artifact.Path, len(res.Artifact.Lines))
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.Styles = provider.HumorStyles
	if data.Style == "" {
		data.Style = provider.DefaultStyle
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Printf("render page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// ── Artifact serving ──

func (s *Server) handleMeme(w http.ResponseWriter, r *http.Request) {
	path, ok := s.store.Resolve(r.PathValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType(path))
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

func memeURL(path string) string {
	return memePrefix + filepath.Base(path)
}

// ── API ──

type createRequest struct {
	Context    string `json:"context"`
	HumorStyle string `json:"humor_style"`
}

type createResponse struct {
	URL      string   `json:"url"`
	Path     string   `json:"path"`
	Caption  string   `json:"caption"`
	Lines    []string `json:"lines"`
	ImageURL string   `json:"image_url"`
	Style    string   `json:"humor_style"`
}

type renderRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, provider.HumorStyles)
}

func (s *Server) handleCreateMeme(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.chain.Run(ctx, req.Context, req.HumorStyle)
	if err != nil {
		status, message := classify(err)
		log.Printf("api meme failed context=%q err=%v", req.Context, err)
		writeJSON(w, status, errorResponse{Error: message})
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		URL:      memeURL(res.Artifact.Path),
		Path:     res.Artifact.Path,
		Caption:  res.Caption,
		Lines:    res.Artifact.Lines,
		ImageURL: res.ImageURL,
		Style:    res.Style,
	})
}

// handleRender composites a caption onto a picture and returns the PNG
// without touching the artifact directory.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image_url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	canvas, _, err := s.chain.Compositor.Render(ctx, req.ImageURL, req.Caption)
	if err != nil {
		status, message := classify(err)
		log.Printf("api render failed url=%s err=%v", req.ImageURL, err)
		writeJSON(w, status, errorResponse{Error: message})
		return
	}

	var buf bytes.Buffer
	if err := artifact.Encode(&buf, canvas, ".png"); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "The meme could not be encoded."})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// ── Helpers ──

// classify maps a workflow error to a status code and a user-facing message.
// An expired deadline is checked first since it arrives wrapped in whichever
// stage was running.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Making your meme took too long."
	case errors.Is(err, chain.ErrEmptyTopic):
		return http.StatusBadRequest, "Please describe a context for the meme."
	case errors.Is(err, provider.ErrGeneration):
		return http.StatusBadGateway, "The AI service failed to respond. Please try again."
	case errors.Is(err, meme.ErrNetwork):
		return http.StatusBadGateway, "Could not download the picture for your meme."
	case errors.Is(err, meme.ErrImageDecode):
		return http.StatusBadGateway, "The picture for your meme could not be read."
	case errors.Is(err, meme.ErrFontLoad):
		return http.StatusInternalServerError, "The meme font is not available on this server."
	case errors.Is(err, artifact.ErrWrite):
		return http.StatusInternalServerError, "The meme could not be saved."
	default:
		return http.StatusInternalServerError, "Something went wrong while making your meme."
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("json encode error: %v", err)
	}
}
