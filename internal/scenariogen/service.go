package scenariogen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/edquest/internal/bundle"
	"github.com/abhisek/edquest/internal/compiler"
	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/logging"
	"github.com/abhisek/edquest/internal/scenario"
	"github.com/abhisek/edquest/internal/store"
)

// Generation sources.
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)

// EventSink records generation attempts.
type EventSink interface {
	AppendGeneration(ctx context.Context, data store.GenerationEventData) error
}

// Build is the outcome of Service.Build.
type Build struct {
	Description *scenario.Description
	Result      *compiler.Result
	Ledger      *ledger.Ledger
	Bundle      *bundle.Scenario

	// Source is SourceAI or SourceTemplate.
	Source string

	// FallbackReason is why the AI attempt was not used. Empty when the
	// AI attempt succeeded.
	FallbackReason string
}

// Service generates and compiles scenarios, falling back to the template
// generator when the AI path fails at any stage.
type Service struct {
	ai       Generator
	template Generator
	compiler *compiler.Compiler
	sink     EventSink
	config   Config
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCompiler replaces the default compiler.
func WithCompiler(c *compiler.Compiler) Option {
	return func(s *Service) { s.compiler = c }
}

// WithEventSink records every attempt in sink.
func WithEventSink(sink EventSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithConfig overrides DefaultConfig. Only Timeout is read by the service.
func WithConfig(cfg Config) Option {
	return func(s *Service) { s.config = cfg }
}

// NewService creates a Service. A nil ai generator means template only.
func NewService(ai Generator, opts ...Option) *Service {
	s := &Service{
		ai:       ai,
		template: NewTemplateGenerator(),
		config:   DefaultConfig(),
		logger:   logging.New("scenariogen"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.compiler == nil {
		s.compiler = compiler.New()
	}
	return s
}

// Build produces a compiled scenario for req. The ledger is checked first;
// a bad ledger fails without any generation attempt. When both the AI and
// template attempts fail the error joins both causes.
func (s *Service) Build(ctx context.Context, req *Request) (*Build, error) {
	l, err := req.Ledger()
	if err != nil {
		return nil, fmt.Errorf("request ledger: %w", err)
	}

	var aiErr error
	if s.ai == nil {
		aiErr = errors.New("no AI provider configured")
	} else {
		b, err := s.attempt(ctx, SourceAI, s.ai, req, l, "")
		if err == nil {
			return b, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		aiErr = err
		s.logger.Warn("AI generation failed, using template", "error", err)
	}

	b, err := s.attempt(ctx, SourceTemplate, s.template, req, l, aiErr.Error())
	if err != nil {
		return nil, errors.Join(aiErr, err)
	}
	return b, nil
}

func (s *Service) attempt(ctx context.Context, source string, gen Generator, req *Request, l *ledger.Ledger, fallback string) (*Build, error) {
	ev := store.GenerationEventData{
		Theme:          req.Theme,
		Source:         source,
		FallbackReason: fallback,
		ConceptCount:   l.Len(),
	}

	b, err := s.generate(ctx, source, gen, req, l)
	if err != nil {
		ev.ErrorMessage = err.Error()
	} else {
		b.FallbackReason = fallback
		ev.Success = true
		ev.ScenarioID = b.Bundle.ID
		ev.NodeCount = b.Result.Graph.Len()
		ev.WarningCount = len(b.Result.Warnings)
	}
	s.record(ctx, ev)
	return b, err
}

func (s *Service) generate(ctx context.Context, source string, gen Generator, req *Request, l *ledger.Ledger) (*Build, error) {
	if source == SourceAI && s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	d, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s generation: %w", source, err)
	}
	res, err := s.compiler.Compile(l, d)
	if err != nil {
		return nil, fmt.Errorf("%s compile: %w", source, err)
	}

	sc := bundle.New(d.Title, res.Graph, l, d.Conclusion)
	sc.Theme = req.Theme
	sc.Source = source
	return &Build{
		Description: d,
		Result:      res,
		Ledger:      l,
		Bundle:      sc,
		Source:      source,
	}, nil
}

func (s *Service) record(ctx context.Context, ev store.GenerationEventData) {
	if s.sink == nil {
		return
	}
	if err := s.sink.AppendGeneration(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Warn("failed to record generation event", "source", ev.Source, "error", err)
	}
}
