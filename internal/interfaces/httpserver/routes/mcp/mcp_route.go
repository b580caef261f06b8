package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"seo-copilot/services/mcp-tools/internal/interfaces/httpserver/responses"
	"seo-copilot/services/mcp-tools/utils/platformerrors"
)

var allowedMCPMethods = map[string]bool{
	// Initialization / handshake
	"initialize":                true,
	"notifications/initialized": true,
	"ping":                      true,

	// Tools
	"tools/list": true,
	"tools/call": true,

	// Resources
	"resources/list":           true,
	"resources/templates/list": true,
	"resources/read":           true,
}

type MCPRoute struct {
	analyzeMCP  *AnalyzeMCP
	mcpServer   *mcp.Server
	httpHandler http.Handler
}

func NewMCPRoute(analyzeMCP *AnalyzeMCP) *MCPRoute {
	impl := &mcp.Implementation{
		Name:    "seo-copilot-tools",
		Version: "1.0.0",
	}
	server := mcp.NewServer(impl, nil)

	analyzeMCP.RegisterTools(server)
	analyzeMCP.RegisterResources(server)

	return &MCPRoute{
		analyzeMCP: analyzeMCP,
		mcpServer:  server,
		httpHandler: mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
			return server
		}, &mcp.StreamableHTTPOptions{Stateless: true}),
	}
}

func (route *MCPRoute) RegisterRouter(router *gin.RouterGroup) {
	router.POST("/mcp",
		MCPMethodGuard(allowedMCPMethods),
		InjectUserContext(),
		route.serveMCP,
	)
}

// serveMCP streams Model Context Protocol responses using the underlying MCP server.
// @Summary MCP endpoint for SEO analysis tools
// @Description Handles Model Context Protocol (MCP) requests over HTTP. Supports MCP methods: initialize, ping, tools/list, tools/call, resources/list, resources/read.
// @Description
// @Description **Available Tools:**
// @Description - `analyze_title`: Fetch the SERP for a query, derive competitive signals and return ranked title/description rewrite suggestions (params: query, current_title, current_description, options).
// @Description
// @Description **Available Resources:**
// @Description - `sample_serp_data` (serp://sample/best-running-shoes): fixed SERP snapshot for offline demonstration.
// @Description
// @Description **MCP Protocol:**
// @Description - Request format: JSON-RPC 2.0 with method and params
// @Description - Response format: Server-Sent Events (SSE) stream
// @Description - Stateless mode (no session management)
// @Tags MCP API
// @Accept json
// @Produce text/event-stream
// @Param request body object true "MCP JSON-RPC request payload (e.g., {\"jsonrpc\":\"2.0\",\"method\":\"tools/list\",\"id\":1})"
// @Success 200 {string} string "Streamed MCP response in SSE format"
// @Failure 400 {object} responses.ErrorResponse "Invalid MCP request payload or unsupported method"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/mcp [post]
func (route *MCPRoute) serveMCP(reqCtx *gin.Context) {
	// Force acceptable content types for go-sdk streamable handler even if client omits Accept.
	reqCtx.Request.Header.Set("Accept", "application/json, text/event-stream")
	route.httpHandler.ServeHTTP(reqCtx.Writer, reqCtx.Request)
}

// InjectUserContext extracts user_id from JWT token and injects it into request context
func InjectUserContext() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		// auth_token is set by the auth middleware when enabled
		if tokenVal, exists := reqCtx.Get("auth_token"); exists {
			if token, ok := tokenVal.(*jwt.Token); ok && token.Valid {
				if claims, ok := token.Claims.(jwt.MapClaims); ok {
					var userID string
					if sub, ok := claims["sub"].(string); ok && sub != "" {
						userID = sub
					} else if uid, ok := claims["user_id"].(string); ok && uid != "" {
						userID = uid
					} else if uid, ok := claims["uid"].(string); ok && uid != "" {
						userID = uid
					}

					if userID != "" {
						ctx := context.WithValue(reqCtx.Request.Context(), "user_id", userID)
						reqCtx.Request = reqCtx.Request.WithContext(ctx)
					}
				}
			}
		}
		reqCtx.Next()
	}
}

func MCPMethodGuard(allowedMethods map[string]bool) gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		bodyBytes, err := io.ReadAll(reqCtx.Request.Body)
		if err != nil {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to read MCP request body", "9c2e41d7-5b8a-4f36-b1e0-7a94c8d25f13")
			return
		}
		_ = reqCtx.Request.Body.Close()

		if len(bodyBytes) == 0 {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "empty MCP request body", "4f8b12c6-9d3e-47a5-8c21-e65a0b9d7f48")
			return
		}

		reqCtx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var payload struct {
			Method string `json:"method"`
		}

		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid MCP request payload", "d71a5e92-3c48-4b6f-a07d-58e1f2c4b9a6")
			return
		}

		if payload.Method == "" {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "missing method field in MCP request", "2b96c3f8-7e15-4d2a-9f63-c48a1d7e5b20")
			return
		}

		if !allowedMethods[payload.Method] {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "unsupported MCP method: "+payload.Method, "7e04d9b1-6a2f-4c58-93ad-f1b7c5e82d46")
			return
		}

		reqCtx.Next()
	}
}
