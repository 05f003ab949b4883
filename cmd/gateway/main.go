package main

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coughlinalbert1/distributed-banking/shared/middleware"
	"github.com/coughlinalbert1/distributed-banking/shared/token"
)

func main() {
	authServiceURL := getEnv("AUTH_SERVICE_URL", "http://localhost:8081")
	ledgerServiceURL := getEnv("LEDGER_SERVICE_URL", "http://localhost:8082")

	verifier := token.NewIssuer(mustSecret(), tokenTTL())

	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "api-gateway"})
	})

	// Auth routes (no authentication required). Register is not exposed
	// directly: credentials are only created through account creation.
	router.POST("/v1/auth/login", proxyTo(authServiceURL))
	router.POST("/v1/auth/authenticate", proxyTo(authServiceURL))

	// Ledger routes
	router.POST("/v1/accounts", proxyTo(ledgerServiceURL)) // No auth for registration
	router.GET("/v1/accounts/:userId", proxyTo(ledgerServiceURL))
	router.POST("/v1/login", proxyTo(ledgerServiceURL))

	// Transaction routes (bearer token required)
	auth := middleware.AuthMiddleware(verifier)
	router.POST("/v1/transactions/deposit", auth, proxyTo(ledgerServiceURL))
	router.POST("/v1/transactions/withdraw", auth, proxyTo(ledgerServiceURL))
	router.POST("/v1/transactions/transfer", auth, proxyTo(ledgerServiceURL))

	port := getEnv("PORT", "8080")
	log.Printf("API Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func proxyTo(serviceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Build target URL
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		// Read request body
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// Create new request
		req, err := http.NewRequest(c.Request.Method, targetURL, bytes.NewBuffer(bodyBytes))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create request"})
			return
		}

		// Copy headers
		for key, values := range c.Request.Header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		// Forward user context from JWT middleware if authenticated
		if userID, exists := c.Get("userId"); exists {
			req.Header.Set("X-User-ID", userID.(string))
		}
		if username, exists := c.Get("username"); exists {
			req.Header.Set("X-Username", username.(string))
		}

		// Make request
		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			log.Printf("Error proxying request: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Service unavailable"})
			return
		}
		defer resp.Body.Close()

		// Read response
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read response"})
			return
		}

		// Copy response headers
		for key, values := range resp.Header {
			for _, value := range values {
				c.Header(key, value)
			}
		}

		// Forward response
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}

func mustSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	return []byte(secret)
}

func tokenTTL() time.Duration {
	raw := getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		log.Fatalf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer, got %q", raw)
	}
	return time.Duration(minutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		// Remove trailing slash if present
		return strings.TrimSuffix(value, "/")
	}
	return fallback
}
