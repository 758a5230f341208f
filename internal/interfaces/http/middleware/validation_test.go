package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type signupBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=customer provider"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/signup", func(c *gin.Context) {
		var body signupBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"nope","password":"short","role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "val-1")
	w := serve(router, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "ERR_VALIDATION",
			"message": "Request validation failed",
			"request_id": "val-1",
			"details": [
				{"field": "email", "message": "Invalid email format"},
				{"field": "password", "message": "Must be at least 8 characters"},
				{"field": "role", "message": "Must be one of: customer provider"}
			]
		}
	}`, w.Body.String())
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := gin.New()
	router.POST("/signup", func(c *gin.Context) {
		var body signupBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{`))
	w := serve(router, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "details")
}
