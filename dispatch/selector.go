package dispatch

import "strings"

// Agent identifiers used across the dispatch pipeline.
const (
	AgentAssistant     = "assistant"
	AgentMathematician = "mathematician"
	AgentWeather       = "weather_agent"
)

// Route is the outcome of agent selection.
type Route int

const (
	// RouteDefault sends the task to the general assistant.
	RouteDefault Route = iota
	// RouteTravel triggers the multi-stage travel orchestration chain.
	RouteTravel
	// RouteWeather sends the task to the weather agent.
	RouteWeather
	// RouteSearch sends the task to the search-capable assistant.
	RouteSearch
	// RouteCalculate sends the task to the mathematician.
	RouteCalculate
)

// String returns a human-readable route name for logging.
func (r Route) String() string {
	switch r {
	case RouteTravel:
		return "travel"
	case RouteWeather:
		return "weather"
	case RouteSearch:
		return "search"
	case RouteCalculate:
		return "calculate"
	default:
		return "default"
	}
}

// AgentName returns the agent a single-agent route resolves to. RouteTravel
// has no single agent; it returns an empty string.
func (r Route) AgentName() string {
	switch r {
	case RouteWeather:
		return AgentWeather
	case RouteCalculate:
		return AgentMathematician
	case RouteTravel:
		return ""
	default:
		return AgentAssistant
	}
}

var travelKeywords = []string{"trip", "travel", "visit", "plan", "vacation", "holiday"}

// selectionRules is the ordered rule list applied to the lower-cased task
// text. First match wins; overlapping keywords are resolved purely by order.
var selectionRules = []struct {
	route    Route
	keywords []string
}{
	{RouteTravel, travelKeywords},
	{RouteWeather, []string{"weather", "temperature", "forecast"}},
	{RouteSearch, []string{"search", "tutorial", "find"}},
	{RouteCalculate, []string{"calculate", "math", "equation", "solve", "number", "+", "-", "*", "/", "="}},
}

// Select applies the ordered keyword rules to the task text and returns
// exactly one route. Callers must reject empty task text before selection.
func Select(task string) Route {
	lower := strings.ToLower(task)
	for _, rule := range selectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.route
			}
		}
	}
	return RouteDefault
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
