// Package memory implements per-agent conversation memory: an append-only,
// session-keyed log of role-tagged messages.
package memory
