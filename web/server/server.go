package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/gorilla/websocket"
)

const (
	DefaultTileSize = 32
	maxImageWidth   = 2000
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	scenesDir string
	upgrader  websocket.Upgrader
}

// NewServer creates a new web server that also serves JSON scenes from scenesDir
func NewServer(port int, scenesDir string) *Server {
	return &Server{
		port:      port,
		scenesDir: scenesDir,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Scene ID (preset or "json:<name>")
	Width      int    `json:"width"`      // Image width, 0 keeps the scene's width
	MaxSamples int    `json:"maxSamples"` // Samples per pixel, 0 keeps the scene's value
	MaxDepth   int    `json:"maxDepth"`   // Bounce limit, 0 keeps the scene's value
	MaxPasses  int    `json:"maxPasses"`  // Maximum number of passes
	TileSize   int    `json:"tileSize"`
	Seed       int64  `json:"seed"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	ElapsedMs      int64   `json:"elapsedMs"`
}

func newStats(rs renderer.RenderStats, elapsed time.Duration) Stats {
	return Stats{
		TotalPixels:    rs.TotalPixels,
		TotalSamples:   rs.TotalSamples,
		AverageSamples: rs.AverageSamples,
		MaxSamples:     rs.MaxSamples,
		MinSamples:     rs.MinSamples,
		MaxSamplesUsed: rs.MaxSamplesUsed,
		ElapsedMs:      elapsed.Milliseconds(),
	}
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRenderImage)
	mux.HandleFunc("/ws/render", s.handleRender)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in presets and JSON scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default camera configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "simple"
	}

	sceneObj, err := scene.Load(sceneID, s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene": sceneID,
		"name":  sceneObj.Name,
		"defaults": map[string]interface{}{
			"width":           config.ImageWidth,
			"aspectRatio":     config.AspectRatio,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"tileSize":        DefaultTileSize,
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": 16, "max": maxImageWidth},
			"maxSamples": map[string]int{"min": 1, "max": 10000},
			"maxDepth":   map[string]int{"min": 1, "max": 1000},
			"maxPasses":  map[string]int{"min": 1, "max": 10000},
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// handleRenderImage renders the whole image and responds with a PNG
func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	pipeline, err := s.setupRenderingPipeline(req, renderer.NewDefaultLogger())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	fb, stats, err := pipeline.Raytracer.Render(r.Context())
	if err != nil {
		log.Printf("Render %q aborted: %v", req.Scene, err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	if err := output.WritePNG(w, fb); err != nil {
		log.Printf("Error writing PNG: %v", err)
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "simple"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 16, maxImageWidth); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 7, 1, 10000); err != nil {
		return nil, err
	}
	if req.TileSize, err = parseIntParam(query, "tileSize", DefaultTileSize, 8, 512); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", int(renderer.DefaultRenderConfig().Seed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	// Performance warning
	if req.Width > 800 && req.MaxSamples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
