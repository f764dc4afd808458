package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/ui"
)

type askFunc func(p survey.Prompt, response any, opts ...survey.AskOpt) error

func surveyAsk(p survey.Prompt, response any, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// confirmer returns the candidate confirmation for a --prompt style, or nil when every match is automatic.
func (r *Runner) confirmer(style string, autoFirst bool) (matching.Confirmer, error) {
	if autoFirst {
		return nil, nil
	}

	switch style {
	case "", "tui":
		return ui.NewPicker(r.input, r.output), nil
	case "plain":
		return matching.ConfirmFunc(r.promptPlain), nil
	default:
		return nil, fmt.Errorf("%w: unknown prompt style %q (want tui or plain)", shared.ErrInvalidArgument, style)
	}
}

// promptPlain lists the candidates and reads a number, "s" or "a" from the terminal.
func (r *Runner) promptPlain(ctx context.Context, query models.TrackQuery, candidates []models.RemoteTrackCandidate) (matching.Choice, error) {
	skip := matching.Choice{Kind: matching.SkipTrack}
	if err := ctx.Err(); err != nil {
		return skip, err
	}

	r.writePlainln("Candidates for %s", query.Label())
	for i, c := range candidates {
		r.writePlain("  %d. %s - %s\n", i+1, c.Artist, c.Title)
	}

	var answer string
	prompt := &survey.Input{
		Message: "Pick a number, s to skip, a to accept the best match from now on:",
		Default: "1",
	}
	if err := r.ask(prompt, &answer); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return skip, context.Canceled
		}
		return skip, fmt.Errorf("prompt failed: %w", err)
	}
	return matching.ParseChoice(answer, len(candidates)), nil
}
