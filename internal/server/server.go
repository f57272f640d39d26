package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/metadata"
	"github.com/specialistvlad/contractexplorer/internal/metrics"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/view"
	"github.com/specialistvlad/contractexplorer/internal/wallet"
)

// Contracts gives access to the current load result.
type Contracts interface {
	Contracts() *loader.Result
	Reload(ctx context.Context) *loader.Result
}

// MetadataLoader fetches contract metadata from an RPC server.
type MetadataLoader interface {
	Load(ctx context.Context, contractID, rpcURL string, headers map[string]string) (*metadata.Metadata, error)
}

// SignatureChecker verifies the signatures of a transaction envelope.
type SignatureChecker interface {
	Check(ctx context.Context, req signatures.Request) ([]signatures.Signature, error)
}

// Deps are the services the HTTP layer delegates to.
type Deps struct {
	Contracts  Contracts
	Networks   *network.Provider
	Metadata   MetadataLoader
	Signatures SignatureChecker
	Signer     wallet.Signer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	// Modal is the initial state of the explorer window.
	Modal view.Modal
}

// Server holds the UI state shared by all browser tabs.
type Server struct {
	deps Deps

	mu       sync.Mutex
	modal    view.Modal
	debugger view.Debugger
}

// New returns the explorer HTTP handler.
func New(deps Deps) http.Handler {
	if !Enabled {
		return http.NotFoundHandler()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Signer == nil {
		deps.Signer = wallet.Passthrough{}
	}

	s := &Server{deps: deps, modal: deps.Modal}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(deps.Logger))
	if deps.Metrics != nil {
		router.Use(observe(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK\n") })
	s.routes(router.Group("/api"))
	return router
}

func (s *Server) routes(api *gin.RouterGroup) {
	api.GET("/network", s.getNetwork)
	api.GET("/networks", s.listNetworks)
	api.PUT("/network/:id", s.selectNetwork)
	api.GET("/lab-url", s.labURL)

	api.GET("/contracts", s.listContracts)
	api.POST("/contracts/reload", s.reloadContracts)
	api.GET("/contracts/:name", s.getContract)
	api.GET("/contracts/:name/metadata", s.getMetadata)
	api.POST("/contracts/:name/validate", s.validateArgs)

	api.POST("/sign", s.sign)
	api.POST("/signatures", s.checkSignatures)

	api.GET("/ui", s.getUI)
	api.POST("/ui/toggle", s.toggleModal)
	api.PUT("/ui/selected/:name", s.selectContract)
	api.POST("/ui/details", s.toggleDetails)
}

func abort(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
