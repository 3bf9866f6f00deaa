// Package core defines the shared conversation primitives used across the
// agentdeck demo: role-tagged messages and the normalized response envelope
// returned by every chat, tool and orchestration operation.
package core
