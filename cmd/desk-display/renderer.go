package main

import (
	"context"
	"log/slog"

	"github.com/mrjrask/desk-display/pkg/models"
)

// Renderer draws a resolved screen. The actual draw routines and display
// hardware live outside this program; a renderer must tolerate a screen
// identifier it does not recognize by reporting an error so the loop can
// log it and move on to the next tick, never by crashing.
type Renderer interface {
	Render(ctx context.Context, ref models.ScreenRef) error
}

// logRenderer is the built-in stand-in renderer: it logs what would be
// drawn. Useful headless and in development.
type logRenderer struct {
	logger *slog.Logger
}

func newLogRenderer(logger *slog.Logger) *logRenderer {
	return &logRenderer{logger: logger}
}

func (r *logRenderer) Render(_ context.Context, ref models.ScreenRef) error {
	r.logger.Info("render", "screen", ref.Screen, "preset", ref.Preset)

	return nil
}
