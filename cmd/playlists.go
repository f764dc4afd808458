package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints the playlists in the user's library on a service.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	playlists, err := svc.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s playlists: %w", svc.Name(), err)
	}

	if cmd.Bool("json") {
		if playlists == nil {
			playlists = []models.PlaylistSummary{}
		}
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists found on %s\n", svc.Name())
		return nil
	}

	r.writePlainHeader(ui.Styles().Title(fmt.Sprintf("%s playlists", svc.Name())))
	for _, p := range playlists {
		visibility := "private"
		if p.Public {
			visibility = "public"
		}
		r.writePlain("%-36s %-40s %5d tracks  %s\n", p.ID, p.Name, p.TrackCount, visibility)
	}
	r.writePlain("\nFavorites: %s\n", likedID(cmd.String("service")))
	return nil
}

// PlaylistsCreate creates an empty playlist and prints its id for use with --collection.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.String("name"))
	if name == "" {
		return fmt.Errorf("%w: --name is required", shared.ErrMissingArgument)
	}

	svc, err := r.service(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	p, err := svc.CreatePlaylist(ctx, name, cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return err
	}
	r.logger.Info("playlist created", "service", svc.Name(), "id", p.ID)

	if cmd.Bool("json") {
		return r.writeJSON(p, true)
	}
	r.writePlain("✓ Created %q on %s (id %s)\n", p.Name, svc.Name(), p.ID)
	return nil
}

// likedID returns the favorites alias of a service flag value.
func likedID(service string) string {
	if serviceKey(service) == "ytmusic" {
		return models.YouTubeLikedID
	}
	return models.SpotifyLikedID
}

// collection returns --collection, or asks the user to choose one of the service's playlists.
// The favorites collection is offered first when withFavorites is set.
func (r *Runner) collection(ctx context.Context, cmd *cli.Command, svc services.Service, withFavorites bool) (models.Collection, error) {
	if id := cmd.String("collection"); id != "" {
		return models.ParseCollection(id), nil
	}
	if cmd.Bool("yes") {
		return models.Collection{}, fmt.Errorf("%w: --collection is required with --yes", shared.ErrMissingArgument)
	}

	playlists, err := svc.Playlists(ctx)
	if err != nil {
		return models.Collection{}, fmt.Errorf("failed to list %s playlists: %w", svc.Name(), err)
	}

	var ids, options []string
	if withFavorites {
		ids = append(ids, likedID(cmd.String("service")))
		options = append(options, "Liked songs")
	}
	for _, p := range playlists {
		ids = append(ids, p.ID)
		options = append(options, fmt.Sprintf("%s (%d tracks)", p.Name, p.TrackCount))
	}
	if len(ids) == 0 {
		return models.Collection{}, fmt.Errorf("%w: no playlists on %s, create one with 'tunesync playlists create'", shared.ErrPlaylistNotFound, svc.Name())
	}

	var choice int
	prompt := &survey.Select{
		Message: fmt.Sprintf("Choose a %s collection:", svc.Name()),
		Options: options,
	}
	if err := r.ask(prompt, &choice); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return models.Collection{}, context.Canceled
		}
		return models.Collection{}, fmt.Errorf("prompt failed: %w", err)
	}
	if choice < 0 || choice >= len(ids) {
		return models.Collection{}, fmt.Errorf("%w: choice %d out of range", shared.ErrInvalidArgument, choice)
	}
	return models.ParseCollection(ids[choice]), nil
}
