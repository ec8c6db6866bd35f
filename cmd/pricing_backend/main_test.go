package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/pricing_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSwaggerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("served outside production", func(t *testing.T) {
		r := gin.New()
		setupSwaggerRoutes(r, &config.Config{})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var doc struct {
			BasePath string                    `json:"basePath"`
			Paths    map[string]map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "/api/v1", doc.BasePath)
		assert.Contains(t, doc.Paths, "/organizations/{organizationID}/pricing/resolve")
		assert.Contains(t, doc.Paths["/currencies/{code}"], "put")
	})

	t.Run("hidden in production", func(t *testing.T) {
		r := gin.New()
		setupSwaggerRoutes(r, &config.Config{IsProduction: true})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
