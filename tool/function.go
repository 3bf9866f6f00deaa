package tool

import (
	"context"
	"fmt"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tool. It has no internal mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// User supplied implementation
	fn func(ctx context.Context, input string) (string, error)
}

// NewFunctionTool constructs a FunctionTool.
//
// Example:
//
//	echoTool := tool.NewFunctionTool(
//	  "echo",
//	  "Repeat the input back",
//	  func(_ context.Context, input string) (string, error) {
//	    return input, nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	fn func(ctx context.Context, input string) (string, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, fn: fn}
}

// Name returns the unique tool name used in routing and model prompts.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Call invokes the underlying function. Panics inside the function are
// converted to *ToolError (EXECUTION_ERROR) so a misbehaving tool cannot take
// down a dispatch.
func (t *FunctionTool) Call(ctx context.Context, input string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewToolError(t.name, fmt.Sprintf("panic: %v", r), "EXECUTION_ERROR")
		}
	}()
	return t.fn(ctx, input)
}
