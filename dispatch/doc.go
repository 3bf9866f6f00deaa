// Package dispatch implements the request-to-agent pipeline: keyword-based
// agent selection, bounded invocation of the selected agent, detection and
// repair of responses where the model declined to use a tool it was given,
// fixed multi-agent orchestration chains, simulated streaming playback, and
// normalization of every outcome into one response envelope.
package dispatch
