package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sirupsen/logrus"
)

// TokenCounter estimates prompt size in tokens.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

type encodingResult struct {
	enc *tiktoken.Tiktoken
	err error
}

// NewTokenCounter loads the cl100k_base encoding. The encoding may be
// downloaded on first use, so the load gives up after timeout or when ctx is
// done. Callers should tolerate an error and fall back to
// NewApproxTokenCounter.
func NewTokenCounter(ctx context.Context, timeout time.Duration) (*TokenCounter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan encodingResult, 1)
	go func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		done <- encodingResult{enc: enc, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return &TokenCounter{encoding: res.enc}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", ctx.Err())
	}
}

// NewApproxTokenCounter counts roughly four bytes per token.
func NewApproxTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

func (t *TokenCounter) Count(text string) int {
	if t == nil || t.encoding == nil {
		return len(text) / 4
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountRequest adds a small per-entry overhead for role and separators.
func (t *TokenCounter) CountRequest(r Request) int {
	tokens := 3
	for _, e := range r.Entries {
		tokens += 4 + t.Count(string(e.Role)) + t.Count(e.Text)
	}
	return tokens
}

type TransformerConfig struct {
	Params      GenerationParams
	EscapeInput bool

	// HistoryTokenWarn logs a warning when a built request is estimated above
	// this many tokens. Zero disables the check.
	HistoryTokenWarn int
	Counter          *TokenCounter
}

// Transformer is the shared request builder every chat session goes through.
type Transformer struct {
	cfg TransformerConfig
}

func NewTransformer(cfg TransformerConfig) *Transformer {
	if cfg.Counter == nil {
		cfg.Counter = NewApproxTokenCounter()
	}
	return &Transformer{cfg: cfg}
}

func (t *Transformer) Params() GenerationParams {
	return t.cfg.Params
}

// Build escapes raw text once when configured, then calls BuildRequest.
// Oversized requests are reported, never truncated.
func (t *Transformer) Build(persona string, history []Turn, input string) Request {
	if t.cfg.EscapeInput {
		persona = Escape(persona)
		input = Escape(input)
		escaped := make([]Turn, len(history))
		for i, turn := range history {
			escaped[i] = Turn{Kind: turn.Kind, Text: Escape(turn.Text)}
		}
		history = escaped
	}

	req := BuildRequest(persona, history, input, t.cfg.Params)

	if t.cfg.HistoryTokenWarn > 0 {
		if tokens := t.cfg.Counter.CountRequest(req); tokens > t.cfg.HistoryTokenWarn {
			logrus.WithFields(logrus.Fields{
				"estimated_tokens": tokens,
				"threshold":        t.cfg.HistoryTokenWarn,
				"turns":            len(history),
			}).Warn("conversation history exceeds token warning threshold; sending untruncated")
		}
	}

	return req
}
