package restapi

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"name_wall/internal/app/port"
	"name_wall/internal/app/state"
	"name_wall/internal/client"
	"name_wall/internal/domain/entity"
	"name_wall/internal/domain/layout"
	"name_wall/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "ETH-KIPU Wall"

// maxNameBodyBytes bounds a submission body; a name is a few dozen bytes.
const maxNameBodyBytes = 4 << 10

// WallTemplates parses the embedded HTML templates.
func WallTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// APIWallResponse is the body of every wall endpoint.
type APIWallResponse struct {
	Data          state.AppState `json:"data"`
	TxHash        string         `json:"txHash,omitempty"`
	Reload        bool           `json:"reload"`
	Error         string         `json:"error,omitempty"`
	ErrorKind     string         `json:"errorKind,omitempty"`
	StatusMessage string         `json:"status_message"`
}

// APILayoutResponse lists the names with their spiral positions.
type APILayoutResponse struct {
	Entries []entity.WallEntry `json:"entries"`
	Count   int                `json:"count"`
}

// APINetworkResponse describes the expected and the connected network.
type APINetworkResponse struct {
	Expected entity.NetworkInfo    `json:"expected"`
	Current  *entity.NetworkInfo   `json:"current,omitempty"`
	Balance  *entity.SignerBalance `json:"balance,omitempty"`
}

// APIHealthResponse reports the RPC endpoints' health.
type APIHealthResponse struct {
	Status    string                  `json:"status"`
	Endpoints []entity.RPCProbeResult `json:"endpoints"`
}

type addNameRequest struct {
	Name string `json:"name"`
}

type wallPage struct {
	Title        string
	State        state.AppState
	Entries      []entity.WallEntry
	CountLabel   string
	FaucetHint   string
	ExpectedName string
	Balance      *entity.SignerBalance
	TxURL        string
}

// WallHandler serves the wall page and the JSON API.
type WallHandler struct {
	wallService port.WallService
	probe       client.RPCProbeClient
	network     entity.NetworkDefinition
	logger      port.Logger
}

// NewWallHandler creates a new WallHandler. probe may be nil, in which case /healthz only reports liveness.
func NewWallHandler(ws port.WallService, probe client.RPCProbeClient, network entity.NetworkDefinition, logger port.Logger) *WallHandler {
	return &WallHandler{
		wallService: ws,
		probe:       probe,
		network:     network,
		logger:      logger,
	}
}

// StatusFor maps a wall error to an HTTP status.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, entity.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSubmissionInProgress):
		return http.StatusConflict
	}
	switch entity.KindOf(err) {
	case entity.KindEnvironment, entity.KindNetworkMismatch:
		return http.StatusPreconditionFailed
	case entity.KindWrite:
		return http.StatusBadGateway
	case entity.KindReadDegraded, entity.KindRefresh:
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// GetWallPageHandler loads the wall and renders it.
func (h *WallHandler) GetWallPageHandler(c *gin.Context) {
	st, err := h.wallService.Load(c.Request.Context())
	if err != nil {
		h.logger.Warn("Wall loaded with errors", "error", err)
	}
	h.renderPage(c, http.StatusOK, st)
}

// PostNameFormHandler handles the add-name form. A refresh failure after a confirmed write redirects to the page.
func (h *WallHandler) PostNameFormHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxNameBodyBytes)
	if err := c.Request.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	res, err := h.wallService.Submit(c.Request.Context(), c.PostForm("name"))
	if err == nil && res.ReloadRequired {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err != nil {
		h.logger.Warn("Name submission failed", "error", err)
	}
	h.renderPage(c, StatusFor(err), res.State)
}

func (h *WallHandler) renderPage(c *gin.Context, status int, st state.AppState) {
	entries := layout.Entries(st.Names)
	page := wallPage{
		Title:        pageTitle,
		State:        st,
		Entries:      entries,
		CountLabel:   fmt.Sprintf("%d %s on the wall", len(entries), utils.Plural(len(entries), "name", "names")),
		FaucetHint:   h.faucetHint(),
		ExpectedName: h.network.Name,
		TxURL:        h.network.TxURL(st.LastTxHash),
	}
	if bal, err := h.wallService.SignerBalance(c.Request.Context()); err == nil {
		page.Balance = &bal
	}
	c.HTML(status, "wall.html", page)
}

func (h *WallHandler) faucetHint() string {
	if h.network.Testnet {
		return fmt.Sprintf("%s - free %s from faucets", h.network.Name, h.network.NativeSymbol)
	}
	return h.network.Name
}

// GetWallHandler godoc
// @Summary Load the wall
// @Router /api/v1/wall [get]
func (h *WallHandler) GetWallHandler(c *gin.Context) {
	st, err := h.wallService.Load(c.Request.Context())
	resp := APIWallResponse{Data: st, StatusMessage: "Wall loaded."}
	if err != nil {
		resp.Error = entity.UserMessage(err)
		resp.ErrorKind = kindLabel(err)
		resp.StatusMessage = "Wall could not be loaded."
	}
	c.JSON(StatusFor(err), resp)
}

// PostNameHandler godoc
// @Summary Add a name to the wall
// @Router /api/v1/wall/names [post]
func (h *WallHandler) PostNameHandler(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNameBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, APIWallResponse{Data: h.wallService.Snapshot(), Error: "request body too large", StatusMessage: "Invalid request."})
			return
		}
		c.JSON(http.StatusBadRequest, APIWallResponse{Data: h.wallService.Snapshot(), Error: "could not read request body", StatusMessage: "Invalid request."})
		return
	}
	var req addNameRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, APIWallResponse{Data: h.wallService.Snapshot(), Error: "request body must be {\"name\": \"...\"}", StatusMessage: "Invalid request."})
		return
	}

	res, err := h.wallService.Submit(c.Request.Context(), req.Name)
	resp := APIWallResponse{Data: res.State, TxHash: res.TxHash, Reload: res.ReloadRequired}
	switch {
	case err != nil:
		resp.Error = entity.UserMessage(err)
		resp.ErrorKind = kindLabel(err)
		resp.StatusMessage = "Name was not added."
	case res.ReloadRequired:
		resp.StatusMessage = "Name added. Reload the wall to see it."
	default:
		resp.StatusMessage = "Name added."
	}
	c.JSON(StatusFor(err), resp)
}

// GetLayoutHandler godoc
// @Summary Spiral positions for the current names
// @Router /api/v1/wall/layout [get]
func (h *WallHandler) GetLayoutHandler(c *gin.Context) {
	entries := layout.Entries(h.wallService.Snapshot().Names)
	c.JSON(http.StatusOK, APILayoutResponse{Entries: entries, Count: len(entries)})
}

// GetNetworkHandler godoc
// @Summary Expected and connected network
// @Router /api/v1/network [get]
func (h *WallHandler) GetNetworkHandler(c *gin.Context) {
	st := h.wallService.Snapshot()
	resp := APINetworkResponse{Expected: st.ExpectedNetwork, Current: st.Network}
	if bal, err := h.wallService.SignerBalance(c.Request.Context()); err == nil {
		resp.Balance = &bal
	}
	c.JSON(http.StatusOK, resp)
}

// HealthHandler godoc
// @Summary RPC endpoint health
// @Router /healthz [get]
func (h *WallHandler) HealthHandler(c *gin.Context) {
	if h.probe == nil {
		c.JSON(http.StatusOK, APIHealthResponse{Status: "ok", Endpoints: []entity.RPCProbeResult{}})
		return
	}
	results := h.probe.Probe(c.Request.Context(), h.network.RPCURLs())
	for _, r := range results {
		if r.Healthy {
			c.JSON(http.StatusOK, APIHealthResponse{Status: "ok", Endpoints: results})
			return
		}
	}
	c.JSON(http.StatusServiceUnavailable, APIHealthResponse{Status: "unavailable", Endpoints: results})
}

func kindLabel(err error) string {
	if k := entity.KindOf(err); k != 0 {
		return k.String()
	}
	if errors.Is(err, entity.ErrSubmissionInProgress) {
		return "busy"
	}
	return "internal"
}
