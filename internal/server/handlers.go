package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/view"
	"github.com/specialistvlad/contractexplorer/internal/wallet"
)

// Notice is a non-fatal warning shown in place of content.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type contractsResponse struct {
	Names    []string          `json:"names"`
	Loaded   map[string]string `json:"loaded"`
	Failed   map[string]string `json:"failed"`
	Shadowed []string          `json:"shadowed"`
}

type argResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

type methodResponse struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	ReadOnly    bool          `json:"readOnly"`
	Args        []argResponse `json:"args"`
}

type contractResponse struct {
	Name       string           `json:"name"`
	ContractID string           `json:"contractId,omitempty"`
	RPCURL     string           `json:"rpcUrl,omitempty"`
	Methods    []methodResponse `json:"methods,omitempty"`
	Failure    string           `json:"failure,omitempty"`
}

type uiResponse struct {
	Modal     view.Modal `json:"modal"`
	Title     string     `json:"title"`
	BodyClass string     `json:"bodyClass"`
	Panel     view.Panel `json:"panel"`
}

func summarize(res *loader.Result) contractsResponse {
	out := contractsResponse{
		Names:    append([]string{}, res.Names...),
		Loaded:   make(map[string]string, len(res.Loaded)),
		Failed:   make(map[string]string, len(res.Failed)),
		Shadowed: append([]string{}, res.Shadowed...),
	}
	for name, m := range res.Loaded {
		out.Loaded[name] = m.Default.Options().ContractID
	}
	for name, msg := range res.Failed {
		out.Failed[name] = msg
	}
	return out
}

func describe(name string, m *contract.Module) contractResponse {
	opts := m.Default.Options()
	out := contractResponse{Name: name, ContractID: opts.ContractID, RPCURL: opts.RPCURL, Methods: []methodResponse{}}
	for _, method := range m.Default.Methods() {
		mr := methodResponse{Name: method.Name, Description: method.Description, ReadOnly: method.ReadOnly, Args: []argResponse{}}
		for _, arg := range method.Args {
			typ := arg.Kind
			if typ == "" {
				typ = typeexpr.TypeString(arg.Type)
			}
			mr.Args = append(mr.Args, argResponse{Name: arg.Name, Description: arg.Description, Type: typ})
		}
		out.Methods = append(out.Methods, mr)
	}
	return out
}

func (s *Server) getNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Networks.Active())
}

func (s *Server) listNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active":   s.deps.Networks.Active().ID,
		"networks": s.deps.Networks.List(),
	})
}

// selectNetwork switches the active network and reloads contracts, whose
// clients are bound to the network they were resolved on.
func (s *Server) selectNetwork(c *gin.Context) {
	if err := s.deps.Networks.Select(c.Param("id")); err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}
	s.deps.Contracts.Reload(c.Request.Context())
	c.JSON(http.StatusOK, s.deps.Networks.Active())
}

func (s *Server) labURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": network.LabURL(s.deps.Networks.Active())})
}

func (s *Server) listContracts(c *gin.Context) {
	c.JSON(http.StatusOK, summarize(s.deps.Contracts.Contracts()))
}

func (s *Server) reloadContracts(c *gin.Context) {
	c.JSON(http.StatusOK, summarize(s.deps.Contracts.Reload(c.Request.Context())))
}

func (s *Server) getContract(c *gin.Context) {
	name := c.Param("name")
	res := s.deps.Contracts.Contracts()
	if m, ok := res.Module(name); ok {
		c.JSON(http.StatusOK, describe(name, m))
		return
	}
	if msg, ok := res.Failure(name); ok {
		c.JSON(http.StatusOK, contractResponse{Name: name, Failure: msg})
		return
	}
	abort(c, http.StatusNotFound, fmt.Errorf("%w: %q", view.ErrUnknownContract, name))
}

func (s *Server) loaded(c *gin.Context) (string, *contract.Module, bool) {
	name := c.Param("name")
	m, ok := s.deps.Contracts.Contracts().Module(name)
	if !ok {
		abort(c, http.StatusNotFound, fmt.Errorf("%w: %q", view.ErrUnknownContract, name))
	}
	return name, m, ok
}

// getMetadata answers 200 even when fetching fails; the failure becomes a
// notice so the rest of the contract view stays usable.
func (s *Server) getMetadata(c *gin.Context) {
	if s.deps.Metadata == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("metadata fetching is not configured"))
		return
	}
	_, m, ok := s.loaded(c)
	if !ok {
		return
	}

	active := s.deps.Networks.Active()
	opts := m.Default.Options()
	rpcURL := opts.RPCURL
	if rpcURL == "" {
		rpcURL = active.RPCURL
	}

	md, err := s.deps.Metadata.Load(c.Request.Context(), opts.ContractID, rpcURL, network.Headers(active, network.ServiceRPC))
	if s.deps.Metrics != nil {
		s.deps.Metrics.MetadataFetched(err == nil)
	}
	if err != nil {
		ctxlog.FromContext(c.Request.Context()).Warn("Failed to load contract metadata.", "contract_id", opts.ContractID, "rpc_url", rpcURL, "error", err)
		c.JSON(http.StatusOK, gin.H{
			"notice": Notice{
				Title:   "Error loading metadata",
				Message: fmt.Sprintf("Could not load metadata for contract %s at the following RPC URL: %s", opts.ContractID, rpcURL),
			},
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metadata": md, "rows": md.Rows()})
}

type validateRequest struct {
	Method string            `json:"method" binding:"required"`
	Args   map[string]string `json:"args"`
}

func (s *Server) validateArgs(c *gin.Context) {
	_, m, ok := s.loaded(c)
	if !ok {
		return
	}
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	values, err := view.NewForm(m.Default).Parse(req.Method, req.Args)
	var fe view.FieldErrors
	switch {
	case errors.Is(err, view.ErrUnknownMethod):
		abort(c, http.StatusNotFound, err)
	case errors.As(err, &fe):
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "fields": fe})
	case err != nil:
		abort(c, http.StatusBadRequest, err)
	default:
		c.JSON(http.StatusOK, gin.H{"method": req.Method, "args": view.EncodeValues(values)})
	}
}

type signRequest struct {
	XDR     string `json:"xdr" binding:"required"`
	Address string `json:"address"`
}

func (s *Server) sign(c *gin.Context) {
	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	res, err := s.deps.Signer.SignTransaction(c.Request.Context(), req.XDR, wallet.SignOptions{
		NetworkPassphrase: s.deps.Networks.Active().Passphrase,
		Address:           req.Address,
	})
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type signaturesRequest struct {
	XDR string `json:"xdr" binding:"required"`
}

func (s *Server) checkSignatures(c *gin.Context) {
	if s.deps.Signatures == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("signature checking is not configured"))
		return
	}
	var req signaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	active := s.deps.Networks.Active()
	sigs, err := s.deps.Signatures.Check(c.Request.Context(), signatures.Request{
		EnvelopeXDR:       req.XDR,
		NetworkPassphrase: active.Passphrase,
		HorizonURL:        active.HorizonURL,
		Headers:           network.Headers(active, network.ServiceHorizon),
	})
	if s.deps.Metrics != nil {
		s.deps.Metrics.SignaturesChecked(err == nil)
	}
	if err != nil {
		abort(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signatures": sigs})
}

func (s *Server) ui(res *loader.Result) uiResponse {
	return uiResponse{
		Modal:     s.modal,
		Title:     s.modal.Title(),
		BodyClass: s.modal.BodyClass(),
		Panel:     s.debugger.Panel(res),
	}
}

func (s *Server) getUI(c *gin.Context) {
	res := s.deps.Contracts.Contracts()
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.ui(res))
}

func (s *Server) toggleModal(c *gin.Context) {
	res := s.deps.Contracts.Contracts()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Toggle()
	c.JSON(http.StatusOK, s.ui(res))
}

func (s *Server) selectContract(c *gin.Context) {
	res := s.deps.Contracts.Contracts()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.debugger.Select(res, c.Param("name")); err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, s.ui(res))
}

func (s *Server) toggleDetails(c *gin.Context) {
	res := s.deps.Contracts.Contracts()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.ToggleDetails()
	c.JSON(http.StatusOK, s.ui(res))
}
