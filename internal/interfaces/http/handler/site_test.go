package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/househero/backend/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSiteRouter() *gin.Engine {
	h := NewSiteHandler(site.DefaultAPIEndpoints(), site.DefaultTheme(), "", "")
	r := gin.New()
	r.GET("/api/site/config", h.Config)
	r.GET("/api/site/layout", h.Layout)
	r.GET("/api/site/theme", h.Theme)
	r.GET("/js/config.js", h.ConfigScript)
	r.GET("/css/theme.css", h.ThemeCSS)
	return r
}

func TestSiteHandler_Config(t *testing.T) {
	r := setupSiteRouter()

	tests := []struct {
		name       string
		path       string
		host       string
		wantURL    string
		production bool
	}{
		{"localhost query", "/api/site/config?hostname=localhost", "", site.DefaultDevelopmentAPIURL, false},
		{"loopback query", "/api/site/config?hostname=127.0.0.1", "", site.DefaultDevelopmentAPIURL, false},
		{"public query", "/api/site/config?hostname=househero.co.za", "", site.DefaultProductionAPIURL, true},
		{"host header with port", "/api/site/config", "localhost:3000", site.DefaultDevelopmentAPIURL, false},
		{"public host header", "/api/site/config", "app.househero.co.za", site.DefaultProductionAPIURL, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.host != "" {
				req.Host = tt.host
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Data SiteConfigResponse
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantURL, resp.Data.APIBaseURL)
			assert.Equal(t, tt.production, resp.Data.Production)
		})
	}
}

func TestSiteHandler_Layout(t *testing.T) {
	w := perform(setupSiteRouter(), http.MethodGet, "/api/site/layout?path=/faq&loggedIn=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data LayoutResponse
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, site.DefaultTitle, resp.Data.Title)
	assert.Equal(t, "en", resp.Data.Lang)

	var active []string
	for _, item := range resp.Data.Navigation.Items {
		if item.Active {
			active = append(active, item.Href)
		}
	}
	assert.Equal(t, []string{"/faq"}, active)
	require.Len(t, resp.Data.Navigation.Account, 2)
	assert.Equal(t, "logout", resp.Data.Navigation.Account[1].Action)

	assert.Equal(t, site.CardBaseClasses, resp.Data.Card.Base)
	assert.Contains(t, resp.Data.Card.Hover, "hover:scale-105")
}

func TestSiteHandler_Assets(t *testing.T) {
	r := setupSiteRouter()

	w := perform(r, http.MethodGet, "/js/config.js", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/javascript"))
	assert.Contains(t, w.Body.String(), "window.API_BASE_URL")
	assert.Contains(t, w.Body.String(), site.DefaultProductionAPIURL)

	w = perform(r, http.MethodGet, "/css/theme.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/css"))
	assert.Contains(t, w.Body.String(), "--color-primary: #1A531A;")

	w = perform(r, http.MethodGet, "/api/site/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"./src/app/**/*.{js,ts,jsx,tsx,mdx}"`)
}
