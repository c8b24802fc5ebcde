package service

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes service use-case events to the provided writer
// as slog text records. Events below level are dropped; failures log at
// error level.
func NewLogUseCaseObserver(w io.Writer, level slog.Leveler) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "service_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "service_use_case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// useCaseSpan times one use case. Call finish from a defer with the named
// error result.
type useCaseSpan struct {
	observer  UseCaseObserver
	name      string
	startedAt time.Time
	fields    map[string]any
}

func startUseCase(observer UseCaseObserver, name string, fields map[string]any) *useCaseSpan {
	if fields == nil {
		fields = map[string]any{}
	}
	return &useCaseSpan{observer: observer, name: name, startedAt: time.Now(), fields: fields}
}

func (s *useCaseSpan) set(key string, value any) {
	s.fields[key] = value
}

func (s *useCaseSpan) finish(ctx context.Context, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      s.name,
		StartedAt: s.startedAt,
		Duration:  time.Since(s.startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    s.fields,
	})
}
