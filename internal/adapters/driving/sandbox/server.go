// Package sandbox serves a local stand-in for the platform's KYC endpoints.
//
// It accepts the same multipart submission as the real upload endpoint,
// stores the files on disk and reports the user's KYC status, so the
// pipeline can be exercised end to end without platform credentials.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/logger"
)

// DefaultMaxBodyBytes is the largest accepted submission.
const DefaultMaxBodyBytes = 20 << 20

// Config controls the sandbox behaviour.
type Config struct {
	// Dir receives one directory per accepted submission.
	Dir string

	// Token, when set, must be sent as a bearer token.
	Token string

	// Username is reported by the user endpoint.
	Username string

	// Kyc is the initial status reported by the user endpoint.
	Kyc domain.KycStatus

	// ForceStatus, when non-zero, answers every upload with this status.
	ForceStatus int

	// Delay is added before an upload is answered.
	Delay time.Duration

	// VerifyOnUpload marks the user verified instead of pending after an upload.
	VerifyOnUpload bool

	// MaxBodyBytes bounds the request body. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// AccessLog receives gin's request log. Nil disables it.
	AccessLog io.Writer
}

// Submission is one accepted upload.
type Submission struct {
	ID           string
	DocumentType domain.DocumentType
	Files        [domain.SlotCount]string
	ReceivedAt   time.Time
}

// Server is the sandbox HTTP server.
type Server struct {
	cfg    Config
	engine *gin.Engine

	mu          sync.Mutex
	kyc         domain.KycStatus
	submissions []Submission
}

// NewServer creates a sandbox server, creating cfg.Dir if needed.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Dir == "" {
		dir, err := os.MkdirTemp("", "kycup-sandbox-")
		if err != nil {
			return nil, err
		}
		cfg.Dir = dir
	}
	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create sandbox dir: %w", err)
	}
	if cfg.Username == "" {
		cfg.Username = "sandbox"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{cfg: cfg, kyc: cfg.Kyc}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.AccessLog != nil {
		engine.Use(gin.LoggerWithWriter(cfg.AccessLog))
	}
	engine.MaxMultipartMemory = cfg.MaxBodyBytes

	api := engine.Group("/api", s.requireToken)
	{
		api.POST("/kyc/upload", s.handleUpload)
		api.GET("/user", s.handleUser)
	}
	s.engine = engine

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Dir returns the directory submissions are stored under.
func (s *Server) Dir() string {
	return s.cfg.Dir
}

// Submissions returns the accepted uploads in arrival order.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// SetKyc changes the status reported by the user endpoint.
func (s *Server) SetKyc(status domain.KycStatus) {
	s.mu.Lock()
	s.kyc = status
	s.mu.Unlock()
}

// Kyc returns the status reported by the user endpoint.
func (s *Server) Kyc() domain.KycStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kyc
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("sandbox listening on %s, storing submissions in %s", addr, s.cfg.Dir)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requireToken(c *gin.Context) {
	if s.cfg.Token == "" {
		c.Next()
		return
	}
	got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || got != s.cfg.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleUpload(c *gin.Context) {
	if s.cfg.Delay > 0 {
		select {
		case <-time.After(s.cfg.Delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	if s.cfg.ForceStatus != 0 {
		logger.Debug("sandbox: forcing status %d", s.cfg.ForceStatus)
		c.JSON(s.cfg.ForceStatus, gin.H{"error": http.StatusText(s.cfg.ForceStatus)})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart body"})
		return
	}

	docType := domain.DocumentType(firstValue(form.Value[domain.FieldDocumentType]))
	if !docType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type"})
		return
	}

	sub := Submission{
		ID:           uuid.NewString(),
		DocumentType: docType,
		ReceivedAt:   time.Now(),
	}
	dir := filepath.Join(s.cfg.Dir, sub.ID)

	stored := false
	defer func() {
		if !stored {
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn("sandbox: clean up %s: %v", dir, err)
			}
		}
	}()

	for _, slot := range domain.AllSlots() {
		files := form.File[slot.String()]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + slot.String() + " image"})
			return
		}
		fh := files[0]
		if !isImageType(fh.Header.Get("Content-Type")) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported " + slot.String() + " image type"})
			return
		}
		dst := filepath.Join(dir, slot.String()+filepath.Ext(fh.Filename))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			logger.Error("sandbox: save %s: %v", dst, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store files"})
			return
		}
		sub.Files[slot] = dst
	}
	stored = true

	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	if s.cfg.VerifyOnUpload {
		s.kyc = domain.KycVerified
	} else {
		s.kyc = domain.KycPending
	}
	s.mu.Unlock()

	logger.Info("sandbox: accepted %s submission %s", docType, sub.ID)
	c.JSON(http.StatusOK, gin.H{"status": "success", "id": sub.ID})
}

func (s *Server) handleUser(c *gin.Context) {
	kyc := s.Kyc()
	var value any
	if kyc != domain.KycUnknown {
		value = int(kyc)
	}
	c.JSON(http.StatusOK, gin.H{"username": s.cfg.Username, "kyc": value})
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func isImageType(contentType string) bool {
	mimeType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	for _, t := range domain.DefaultAllowedTypes() {
		if strings.TrimSpace(mimeType) == t {
			return true
		}
	}
	return false
}
