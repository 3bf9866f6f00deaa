package dispatch

import (
	"context"
	"strings"
	"time"
)

// Fragment is one element of a simulated stream. Content fragments carry
// Chunk; a failed run carries Err; the final fragment has Done set.
type Fragment struct {
	Chunk string
	Err   error
	Done  bool
}

// Stream produces a finite, ordered sequence of text fragments that
// concatenate to the assistant's full response. The response is computed
// first in one blocking call, then split into fixed-size word groups and
// played back with a small delay between fragments. This is playback of an
// already-complete value, not incremental decoding from the backend.
func (d *Dispatcher) Stream(ctx context.Context, message string) <-chan Fragment {
	if strings.TrimSpace(message) == "" {
		message = DefaultStreamTask
	}

	out := make(chan Fragment)

	go func() {
		defer close(out)

		release, err := d.acquireSlot(ctx)
		if err != nil {
			emit(ctx, out, Fragment{Err: err})
			emit(ctx, out, Fragment{Done: true})
			return
		}
		defer release()

		chatCtx, cancel := context.WithTimeout(ctx, d.singleTimeout)
		defer cancel()

		ag, err := d.registry.Get(AgentAssistant)
		if err != nil {
			emit(ctx, out, Fragment{Err: err})
			emit(ctx, out, Fragment{Done: true})
			return
		}

		resp, err := ag.Chat(chatCtx, defaultSession, message)
		if err != nil {
			emit(ctx, out, Fragment{Err: err})
			emit(ctx, out, Fragment{Done: true})
			return
		}

		for _, chunk := range chunkWords(resp.Content, d.chunkWords) {
			if !emit(ctx, out, Fragment{Chunk: chunk}) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.streamDelay):
			}
		}

		emit(ctx, out, Fragment{Done: true})
	}()

	return out
}

// emit sends a fragment unless the context is cancelled. Reports whether the
// fragment was delivered.
func emit(ctx context.Context, out chan<- Fragment, f Fragment) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- f:
		return true
	}
}

// chunkWords splits text on single spaces and regroups it into n-word
// fragments, reinserting a trailing space on every fragment except the last.
func chunkWords(content string, n int) []string {
	if n <= 0 {
		n = 3
	}
	words := strings.Split(content, " ")

	var chunks []string
	for i := 0; i < len(words); i += n {
		end := i + n
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if i+n < len(words) {
			chunk += " "
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
