// Package resolver turns free-form user text into a device action plus a
// spoken confirmation, delegating interpretation to a text-completion model
// and validating whatever comes back against the device's known endpoints.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"relay-assistant/internal/domain"
)

// Completer is the text-completion backend the resolver delegates to.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	actionPrefix = "ACTION:"
	speakPrefix  = "SPEAK:"
	noneToken    = "NONE"

	// FallbackSpeak is used whenever the model reply has no usable SPEAK line.
	FallbackSpeak = "Sorry, I didn't understand."
)

type Resolver struct {
	llm     Completer
	baseURL string
	logger  *slog.Logger
}

func New(llm Completer, baseURL string, logger *slog.Logger) *Resolver {
	return &Resolver{
		llm:     llm,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Resolve never fails: model errors, unparsable replies and off-device URLs
// all degrade to a no-action resolution with a diagnostic spoken reply.
func (r *Resolver) Resolve(ctx context.Context, text string) domain.Resolution {
	raw, err := r.llm.Complete(ctx, r.buildPrompt(text))
	if err != nil {
		r.logger.Error("completion call failed", "error", err)
		return domain.Resolution{
			Speak: fmt.Sprintf("Sorry, I couldn't reach the assistant: %v", err),
		}
	}

	res := parseReply(raw)

	if res.Action != "" {
		if _, _, err := domain.ParseActionURL(r.baseURL, res.Action); err != nil {
			r.logger.Warn("model returned an unknown action URL, refusing", "url", res.Action)
			return domain.Resolution{
				Speak: "Sorry, I can't do that with this device.",
			}
		}
	}

	return res
}

func (r *Resolver) buildPrompt(text string) string {
	var endpoints strings.Builder
	for _, ch := range domain.Channels() {
		for _, st := range domain.States() {
			fmt.Fprintf(&endpoints, "- %s\n", domain.ActionURL(r.baseURL, ch, st))
		}
	}

	return fmt.Sprintf(`You control a relay board with two outputs, D1 and D2, reachable at %[1]s.
The only valid actions are these URLs:
%[2]s
Map the user's request to exactly one of those URLs, or to NONE if the
request does not ask to switch an output. Reply with exactly two lines and
nothing else:
ACTION: <one of the URLs above, or NONE>
SPEAK: <a short spoken confirmation for the user>

Example:
User: turn on the first output
ACTION: %[1]s/d1/on
SPEAK: D1 is now on.

Example:
User: what's the weather like?
ACTION: NONE
SPEAK: I can only switch D1 and D2 on or off.

User: %[3]s`, r.baseURL, endpoints.String(), text)
}

// parseReply scans the model output line by line. The first ACTION and the
// first SPEAK line win; later duplicates are ignored.
func parseReply(raw string) domain.Resolution {
	var action, speak string
	var haveAction, haveSpeak bool

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case !haveAction && strings.HasPrefix(line, actionPrefix):
			action = strings.TrimSpace(strings.TrimPrefix(line, actionPrefix))
			haveAction = true
		case !haveSpeak && strings.HasPrefix(line, speakPrefix):
			speak = strings.TrimSpace(strings.TrimPrefix(line, speakPrefix))
			haveSpeak = true
		}
	}

	if action == noneToken {
		action = ""
	}
	if speak == "" {
		speak = FallbackSpeak
	}

	return domain.Resolution{Action: action, Speak: speak}
}
