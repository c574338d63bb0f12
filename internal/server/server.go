// Package server exposes document verification over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/credence/internal/extract"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
)

// HealthMessage is the body of GET /
const HealthMessage = "Credence verification server running"

// DocumentVerifier verifies one document
type DocumentVerifier interface {
	VerifyDocument(ctx context.Context, doc model.Document) (*model.Report, error)
}

// VerifyRequest is the body of POST /verify
type VerifyRequest struct {
	Text        string `json:"text"`
	Language    string `json:"language"`
	PublishDate string `json:"publishDate"` // YYYY-MM-DD, optional
	Mode        string `json:"mode"`        // news, general or empty to detect
}

type handlers struct {
	verifier DocumentVerifier
	logger   *slog.Logger
}

// New builds the HTTP router. m may be nil, in which case /metrics is not served.
func New(cfg model.ServerConfig, verifier DocumentVerifier, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := gin.New()
	g.Use(requestLogger(logger), gin.Recovery())
	g.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	h := handlers{verifier: verifier, logger: logger}
	g.GET("/", h.health)
	g.POST("/verify", h.verify)
	if m != nil {
		g.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return g
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h handlers) health(c *gin.Context) {
	c.String(http.StatusOK, HealthMessage)
}

func (h handlers) verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := req.Document()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("verify request", "language", doc.Language, "mode", doc.Mode, "chars", len(doc.Text), "publish_date", req.PublishDate)

	report, err := h.verifier.VerifyDocument(c.Request.Context(), doc)
	if err != nil {
		var extractionErr *extract.ExtractionError
		if errors.As(err, &extractionErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": extractionErr.Error()})
			return
		}
		h.logger.Error("verification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Document validates the request and converts it to a document. A missing
// language means Traditional Chinese.
func (r VerifyRequest) Document() (model.Document, error) {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return model.Document{}, errors.New("no text provided")
	}

	lang := model.LangZhTW
	if r.Language != "" {
		lang = model.ParseLanguage(r.Language)
	}

	doc := model.Document{Text: text, Language: lang}

	if r.PublishDate != "" {
		d, err := time.Parse(model.DateLayout, strings.TrimSpace(r.PublishDate))
		if err != nil {
			return model.Document{}, fmt.Errorf("publishDate must be YYYY-MM-DD: %q", r.PublishDate)
		}
		doc.ReferenceDate = &d
	}

	switch mode := model.Mode(strings.ToLower(strings.TrimSpace(r.Mode))); mode {
	case model.ModeAuto, model.ModeNews, model.ModeGeneral:
		doc.Mode = mode
	case "auto":
		doc.Mode = model.ModeAuto
	default:
		return model.Document{}, fmt.Errorf("unknown mode %q", r.Mode)
	}

	return doc, nil
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
