// Package tool implements the capability subsystem that lets agents invoke
// named functions. Tools follow the framework's single-string contract: one
// string argument in, one string result out, with a natural-language
// description exposed to the model but not enforced by the runtime.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Be thread-safe if used concurrently
//   - Catch internal failures and return an error string as the result rather
//     than propagating; execution must never raise past the tool boundary
type Tool interface {
	// Name returns the unique identifier for this tool
	// (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it understand when and
	// how to use the tool.
	Description() string

	// Call executes the tool with a single string argument.
	Call(ctx context.Context, input string) (string, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
