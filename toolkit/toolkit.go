// Package toolkit provides the built-in demo tools: arithmetic evaluation,
// synthetic weather, canned search results and the current time. Every tool
// catches internal errors and returns an error string instead of propagating,
// so tool execution never fails past its boundary.
package toolkit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/agentdeck/agentdeck/tool"
)

// calculatorChars is the character whitelist enforced before evaluation.
const calculatorChars = "0123456789+-*/.() "

var weatherConditions = []string{"sunny", "partly cloudy", "cloudy", "light rain", "clear"}

// Calculator returns the "calculate" tool. Input is a basic arithmetic
// expression; anything outside digits, + - * / . ( ) and spaces is rejected
// before evaluation.
func Calculator() tool.Tool {
	return tool.NewFunctionTool(
		"calculate",
		"Calculate a mathematical expression safely",
		func(_ context.Context, expression string) (string, error) {
			for _, c := range expression {
				if !strings.ContainsRune(calculatorChars, c) {
					return "Error: Invalid characters in expression", nil
				}
			}

			expr, err := govaluate.NewEvaluableExpression(expression)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			value, err := expr.Evaluate(nil)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}

			return fmt.Sprintf("Result: %s", formatNumber(value)), nil
		},
	)
}

// formatNumber renders evaluation results without a trailing fractional part
// for whole numbers ("110", not "110.000000").
func formatNumber(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Weather returns the "get_weather" tool producing synthetic but
// realistic-looking conditions for any location string.
func Weather() tool.Tool {
	return tool.NewFunctionTool(
		"get_weather",
		"Get weather for any location",
		func(_ context.Context, location string) (string, error) {
			location = strings.TrimSpace(location)
			if location == "" {
				location = "Unknown Location"
			}

			condition := weatherConditions[rand.IntN(len(weatherConditions))]
			temp := 18 + rand.IntN(15)     // 18..32
			humidity := 40 + rand.IntN(36) // 40..75
			wind := 8 + rand.IntN(13)      // 8..20

			return fmt.Sprintf("Weather in %s: %s, %d°C, humidity %d%%, wind %d km/h",
				location, condition, temp, humidity, wind), nil
		},
	)
}

// WebSearch returns the "search_web" tool. The demo serves a canned result
// set rather than querying a real search backend.
func WebSearch() tool.Tool {
	return tool.NewFunctionTool(
		"search_web",
		"Search for information",
		func(_ context.Context, query string) (string, error) {
			return fmt.Sprintf("Search results for '%s':\n\n"+
				"1. Official Python Tutorial - https://docs.python.org/3/tutorial/\n"+
				"   Comprehensive guide covering all Python basics and advanced topics\n\n"+
				"2. Real Python Tutorials - https://realpython.com/\n"+
				"   High-quality Python tutorials for beginners to advanced\n\n"+
				"3. Python.org Learning Resources - https://www.python.org/about/gettingstarted/\n"+
				"   Official learning resources and documentation\n\n"+
				"4. Codecademy Python Course - Interactive coding lessons\n\n"+
				"5. YouTube: Python for Beginners - Free video tutorials\n\n"+
				"All these resources provide excellent Python learning materials!", query), nil
		},
	)
}

// Clock returns the "get_current_time" tool.
func Clock() tool.Tool {
	return tool.NewFunctionTool(
		"get_current_time",
		"Get the current time",
		func(_ context.Context, _ string) (string, error) {
			return fmt.Sprintf("Current time: %s", time.Now().Format("2006-01-02 15:04:05")), nil
		},
	)
}

// All returns every built-in tool.
func All() []tool.Tool {
	return []tool.Tool{Calculator(), Weather(), WebSearch(), Clock()}
}
