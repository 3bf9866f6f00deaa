// Package agent implements named conversational agents: a system instruction,
// a shared model backend, an independent conversation memory and a set of
// registered tools, plus the process-lifetime Registry that owns them.
package agent
