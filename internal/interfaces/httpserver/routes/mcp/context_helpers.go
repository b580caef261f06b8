package mcp

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// callContext carries the caller identifiers a host may attach to any tool
// call. All fields are optional and used for logging only.
type callContext struct {
	ToolCallID     string `json:"tool_call_id"`
	RequestID      string `json:"request_id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// extractCallContext decodes the passthrough identifiers from the raw tool
// arguments. Unknown or malformed arguments yield an empty context.
func extractCallContext(req *mcp.CallToolRequest) callContext {
	var cc callContext
	if req == nil || req.Params == nil {
		return cc
	}

	raw := req.Params.Arguments
	if len(raw) == 0 {
		return cc
	}

	// Ignore decode errors: the typed tool handler validates the arguments,
	// here we only pick out identifiers when they are present.
	_ = json.Unmarshal(raw, &cc)
	return cc
}
