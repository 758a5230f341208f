package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/househero/backend/internal/infrastructure/logger"
	"github.com/househero/backend/internal/site"
	"go.uber.org/zap"
)

// SiteHandler serves the presentation settings read by the frontends
type SiteHandler struct {
	BaseHandler
	endpoints   site.APIEndpoints
	theme       site.Theme
	title       string
	description string
}

// NewSiteHandler creates a new SiteHandler. Empty title and description use
// the layout defaults.
func NewSiteHandler(endpoints site.APIEndpoints, theme site.Theme, title, description string) *SiteHandler {
	return &SiteHandler{endpoints: endpoints, theme: theme, title: title, description: description}
}

// SiteConfigResponse is the API base URL chosen for a hostname
type SiteConfigResponse struct {
	Hostname   string `json:"hostname" example:"localhost"`
	APIBaseURL string `json:"apiBaseUrl" example:"http://127.0.0.1:5001"`
	Production bool   `json:"production"`
}

// LayoutResponse is the page layout plus the card classes components render with
type LayoutResponse struct {
	site.Layout
	Card CardClassesResponse `json:"card"`
}

// CardClassesResponse lists the composed card class strings
type CardClassesResponse struct {
	Base  string `json:"base"`
	Hover string `json:"hover"`
}

// Config godoc
// @ID           getSiteConfig
// @Summary      Select the API base URL
// @Description  localhost and 127.0.0.1 get the development URL, every other hostname the production URL. Without ?hostname= the Host header is used.
// @Tags         site
// @Produce      json
// @Param        hostname query string false "Browser hostname"
// @Success      200 {object} APIResponse[SiteConfigResponse]
// @Router       /site/config [get]
func (h *SiteHandler) Config(c *gin.Context) {
	hostname := c.Query("hostname")
	if hostname == "" {
		hostname = site.HostnameFromHost(c.Request.Host)
	}
	h.Success(c, SiteConfigResponse{
		Hostname:   hostname,
		APIBaseURL: h.endpoints.Select(hostname),
		Production: !site.IsLocalHost(hostname),
	})
}

// Layout godoc
// @ID           getSiteLayout
// @Summary      Get page layout and navigation
// @Tags         site
// @Produce      json
// @Param        path     query string false "Current page path" default(/)
// @Param        loggedIn query bool   false "Whether the visitor is logged in"
// @Success      200 {object} APIResponse[LayoutResponse]
// @Router       /site/layout [get]
func (h *SiteHandler) Layout(c *gin.Context) {
	loggedIn, _ := strconv.ParseBool(c.Query("loggedIn"))
	h.Success(c, LayoutResponse{
		Layout: site.NewLayout(h.title, h.description, c.Query("path"), loggedIn),
		Card: CardClassesResponse{
			Base:  site.CardClasses(false, ""),
			Hover: site.CardClasses(true, ""),
		},
	})
}

// Theme godoc
// @ID           getSiteTheme
// @Summary      Get theme tokens
// @Tags         site
// @Produce      json
// @Success      200 {object} APIResponse[site.Theme]
// @Router       /site/theme [get]
func (h *SiteHandler) Theme(c *gin.Context) {
	h.Success(c, h.theme)
}

// ConfigScript renders /js/config.js for the static frontend
func (h *SiteHandler) ConfigScript(c *gin.Context) {
	body, err := h.endpoints.ConfigScript()
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to render config.js", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", body)
}

// ThemeCSS renders the theme colours as CSS custom properties
func (h *SiteHandler) ThemeCSS(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(h.theme.CSS()))
}
