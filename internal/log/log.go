// Package log defines the engine's logging collaborator: a small Sink
// interface the core calls at five severities, and a zerolog-backed
// adapter binding it to structured output (§6 "Logging (external)", §10).
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Sink is the core's only view of logging. Format is free per §6; callers
// outside the core supply whichever implementation fits (zerolog in
// production, a recording test double in tests).
type Sink interface {
	Info(msg string, fields map[string]any)
	Success(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// ZerologSink adapts zerolog.Logger to the Sink interface. Success is
// Info plus a "status":"success" field, matching §10's mapping of the
// core's five severities onto zerolog's four levels.
type ZerologSink struct {
	logger zerolog.Logger
}

// New builds a ZerologSink writing to w (os.Stdout in production, any
// io.Writer — including zerolog.ConsoleWriter — elsewhere).
func New(w io.Writer) *ZerologSink {
	return &ZerologSink{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// NewConsole builds a human-readable console sink, used by cmd/drumnbase.
func NewConsole() *ZerologSink {
	return New(zerolog.ConsoleWriter{Out: os.Stderr})
}

func withFields(e *zerolog.Event, fields map[string]any) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}

func (s *ZerologSink) Info(msg string, fields map[string]any) {
	withFields(s.logger.Info(), fields).Msg(msg)
}

func (s *ZerologSink) Success(msg string, fields map[string]any) {
	withFields(s.logger.Info().Str("status", "success"), fields).Msg(msg)
}

func (s *ZerologSink) Warn(msg string, fields map[string]any) {
	withFields(s.logger.Warn(), fields).Msg(msg)
}

func (s *ZerologSink) Error(msg string, err error, fields map[string]any) {
	withFields(s.logger.Error().Err(err), fields).Msg(msg)
}

func (s *ZerologSink) Debug(msg string, fields map[string]any) {
	withFields(s.logger.Debug(), fields).Msg(msg)
}
