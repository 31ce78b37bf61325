package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/edquest/internal/logging"
	"github.com/abhisek/edquest/internal/store"
)

// EventSink receives one record per provider call.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider records every call, successful or not, to an EventSink.
// Sink failures are logged and never fail the request.
type LoggingProvider struct {
	inner    Provider
	provider string
	sink     EventSink
	logger   *slog.Logger
}

// WithLogging wraps p. provider is the vendor name stored with each event.
func WithLogging(p Provider, provider string, sink EventSink) Provider {
	return &LoggingProvider{
		inner:    p,
		provider: provider,
		sink:     sink,
		logger:   logging.New("llm"),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.logger.Debug("LLM request",
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"latency", latency,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
		"success", data.Success)

	// The request outcome stands even if the log write fails; use a
	// context that survives the caller's cancellation.
	if logErr := l.sink.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.logger.Warn("failed to record LLM request", "error", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request for the `llm view` command.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
