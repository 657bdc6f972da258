// Package stubserver serves fixture JSON over HTTP so suites can run
// self-contained, without a deployed environment.
package stubserver

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cposada23/qaharness/internal/common"
	"github.com/gin-gonic/gin"
)

// Server maps request paths onto fixture files: GET /users/1 serves
// <fixtures>/users/1.json when it exists.
type Server struct {
	fixturesDir string
	engine      *gin.Engine
}

// New builds a stub server over the given fixtures directory.
func New(fixturesDir string) (*Server, error) {
	abs, err := filepath.Abs(fixturesDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{fixturesDir: abs, engine: engine}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.NoRoute(s.serveFixture)

	return s, nil
}

// Engine exposes the underlying router for httptest wiring.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	common.GetLogger().WithComponent("stubserver").Info("serving fixtures",
		"addr", addr, "dir", s.fixturesDir)
	return s.engine.Run(addr)
}

func (s *Server) serveFixture(c *gin.Context) {
	rel := strings.Trim(c.Request.URL.Path, "/")
	if rel == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fixture path"})
		return
	}
	path := filepath.Join(s.fixturesDir, filepath.Clean(rel)+".json")
	// Clean above plus the prefix check keep lookups inside the fixtures dir.
	if !strings.HasPrefix(path, s.fixturesDir+string(os.PathSeparator)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "fixture not found"})
		return
	}
	data, err := os.ReadFile(path) // #nosec G304 -- constrained to fixturesDir
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "fixture not found", "path": rel})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
