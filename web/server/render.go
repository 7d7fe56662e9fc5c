package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Event is a single websocket message
type Event struct {
	Type string      `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data interface{} `json:"data"`
}

// TileUpdate represents a single tile update sent over the websocket
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	X           int    `json:"x"` // Pixel offset of the tile's top-left corner
	Y           int    `json:"y"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent after every completed pass. The final pass carries the full image.
type PassUpdate struct {
	PassNumber     int    `json:"passNumber"`
	TotalPasses    int    `json:"totalPasses"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	PrimitiveCount int    `json:"primitiveCount"`
	Stats          Stats  `json:"stats"`
	IsLast         bool   `json:"isLast"`
	ImageData      string `json:"imageData,omitempty"`
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender upgrades to a websocket and streams a progressive render
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine owns the connection for writes
	events := make(chan Event, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeEvents(ctx, cancel, conn, events)
	}()
	go s.readClientMessages(conn, cancel)

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging()
	consoleCtx, stopConsole := context.WithCancel(ctx)
	var consoleWG sync.WaitGroup
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(consoleCtx, consoleChan, events)
	}()

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		sendEvent(ctx, events, Event{Type: "error", Data: err.Error()})
	} else {
		startTime := time.Now()
		passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})
		s.handleRenderingEvents(ctx, events, passChan, tileChan, errChan, pipeline, req, startTime)
	}

	stopConsole()
	consoleWG.Wait()
	close(events)
	<-writerDone
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeEvents writes queued events until the queue closes or the client goes away
func (s *Server) writeEvents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events <-chan Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
	}()

	for {
		select {
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "render finished"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Println("write error:", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// readClientMessages discards client messages and cancels the render when the connection drops
func (s *Server) readClientMessages(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// streamConsoleMessages forwards logger output to the websocket
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, events chan<- Event) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			select {
			case events <- Event{Type: "console", Data: consoleMsg}:
			case <-ctx.Done():
				return
			default:
				// Queue full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj, err := scene.Load(req.Scene, s.scenesDir)
	if err != nil {
		return nil, err
	}

	if req.Width > 0 {
		sceneObj.CameraConfig.ImageWidth = req.Width
	}
	if req.MaxSamples > 0 {
		sceneObj.CameraConfig.SamplesPerPixel = req.MaxSamples
	}
	if req.MaxDepth > 0 {
		sceneObj.CameraConfig.MaxDepth = req.MaxDepth
	}
	if err := sceneObj.Preprocess(); err != nil {
		return nil, err
	}

	config := renderer.DefaultRenderConfig()
	config.TileSize = req.TileSize
	config.MaxPasses = req.MaxPasses
	config.Seed = req.Seed

	raytracer := renderer.NewProgressiveRaytracer(sceneObj.World, sceneObj.NewCamera(), config, logger)
	return &RenderingPipeline{
		Scene:     sceneObj,
		Raytracer: raytracer,
	}, nil
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, events chan<- Event,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	pipeline *RenderingPipeline, req *RenderRequest, startTime time.Time) {

	for passChan != nil || tileChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, events, passResult, pipeline, req, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, events, tileResult)

		case err, ok := <-errChan:
			if !ok {
				// Closed before the last pass is drained
				errChan = nil
				continue
			}
			if err != nil {
				sendEvent(ctx, events, Event{Type: "error", Data: fmt.Sprintf("Rendering failed: %v", err)})
				return
			}

		case <-ctx.Done():
			return
		}
	}

	sendEvent(ctx, events, Event{Type: "complete", Data: "Rendering completed"})
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, events chan<- Event, passResult renderer.PassResult,
	pipeline *RenderingPipeline, req *RenderRequest, startTime time.Time) {

	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		Width:          passResult.Image.Width,
		Height:         passResult.Image.Height,
		PrimitiveCount: pipeline.Scene.GetPrimitiveCount(),
		Stats:          newStats(passResult.Stats, time.Since(startTime)),
		IsLast:         passResult.IsLast,
	}
	if passResult.IsLast {
		imageData, err := framebufferToBase64PNG(passResult.Image)
		if err != nil {
			log.Printf("Error encoding final image: %v", err)
		}
		update.ImageData = imageData
	}

	sendEvent(ctx, events, Event{Type: "passComplete", Data: update})
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, events chan<- Event, tileResult renderer.TileCompletionResult) {
	tileData, err := framebufferToBase64PNG(tileResult.Pixels)
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	sendEvent(ctx, events, Event{Type: "tile", Data: TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		X:           tileResult.Bounds.Min.X,
		Y:           tileResult.Bounds.Min.Y,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}})
}

// framebufferToBase64PNG gamma-encodes a framebuffer as a base64 PNG
func framebufferToBase64PNG(fb *renderer.Framebuffer) (string, error) {
	var buf bytes.Buffer
	if err := output.WritePNG(&buf, fb); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendEvent queues an event unless the client has gone away
func sendEvent(ctx context.Context, events chan<- Event, event Event) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}
