// Package infer implements the optional external inference adapter:
// a Gemini-backed suggester for environment effects. The adapter is
// strictly best-effort — every failure mode surfaces as an error the
// resolver converts to "no suggestion".
package infer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nathoo/dmcore/engine/env"
)

const defaultModel = "gemini-2.5-flash"

const systemPrompt = `You are a tabletop-RPG DM assistant. Given the world state, the
skill being tested, and the player's action text, output exactly one
JSON object and nothing else:
{"difficultyDelta": integer in -2..2, "advantageBias": -1, 0 or 1, "notes": ["short reason", ...]}
difficultyDelta nudges the base DC (+harder, -easier). advantageBias
grants advantage (1) or disadvantage (-1). Pure JSON only.`

// Client is a Gemini-backed env.Suggester.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

var _ env.Suggester = (*Client)(nil)

// New creates a suggestion client. The API key is required; the model
// name falls back to a sensible default.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("inference: missing API key")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("inference: creating client: %w", err)
	}

	gm := client.GenerativeModel(model)
	temp := float32(0.2)
	gm.Temperature = &temp

	return &Client{
		client: client,
		model:  gm,
		logger: slog.Default().With("component", "infer"),
	}, nil
}

// Close releases the underlying client.
func (c *Client) Close() {
	c.client.Close()
}

// Suggest asks the model for an environment adjustment. The caller
// bounds the wait via ctx; any error here is recovered by the
// resolver, so failures are logged at debug and returned plainly.
func (c *Client) Suggest(ctx context.Context, req env.Request) (*env.Suggestion, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("inference: encoding request: %w", err)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(systemPrompt+"\n\n"+string(payload)))
	if err != nil {
		c.logger.DebugContext(ctx, "suggestion call failed", "err", err)
		return nil, fmt.Errorf("inference: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("inference: empty response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("inference: unexpected response part type")
	}

	sug, err := decodeSuggestion(string(text))
	if err != nil {
		c.logger.DebugContext(ctx, "suggestion payload rejected", "err", err)
		return nil, err
	}
	return sug, nil
}

// wireSuggestion is the shape the model is asked to produce.
type wireSuggestion struct {
	DifficultyDelta int      `json:"difficultyDelta"`
	AdvantageBias   int      `json:"advantageBias"`
	Notes           []string `json:"notes"`
}

// decodeSuggestion strips code fences, decodes the JSON body, and
// clamps numeric fields defensively rather than trusting the remote.
func decodeSuggestion(raw string) (*env.Suggestion, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var w wireSuggestion
	if err := json.Unmarshal([]byte(clean), &w); err != nil {
		return nil, fmt.Errorf("inference: decoding suggestion: %w", err)
	}

	notes := w.Notes
	if notes == nil {
		notes = []string{}
	}
	return &env.Suggestion{
		DifficultyDelta: clamp(w.DifficultyDelta, -2, 2),
		AdvantageBias:   clamp(w.AdvantageBias, -1, 1),
		Notes:           notes,
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
