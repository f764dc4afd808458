package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesync/internal/formatter"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tagging"
	"github.com/desertthunder/tunesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TagsUpdate fills genre, year and cover art of local files from the release catalog.
//
// Flags override the [tags] section only when given.
func (r *Runner) TagsUpdate(ctx context.Context, cmd *cli.Command) error {
	files, err := r.mediaFiles(cmd)
	if err != nil {
		return err
	}

	catalog, err := r.releaseCatalog()
	if err != nil {
		return err
	}

	rec, release := r.reconciler(nil, tasks.WithReleaseCatalog(catalog))
	defer release()

	cfg := tasks.TagConfigFrom(r.tagsConfig(cmd))
	var result *tasks.TagUpdateResult
	err = r.run(ctx, fmt.Sprintf("Tagging %d files", len(files)), true, func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = rec.UpdateTagsFromCatalog(ctx, files, cfg, progress)
		return runErr
	})
	if err != nil {
		return err
	}

	return r.report(cmd, formatter.FromTags(result), result)
}

// TagsRename renames local files to "Artist - Title" from their own tags.
func (r *Runner) TagsRename(ctx context.Context, cmd *cli.Command) error {
	files, err := r.mediaFiles(cmd)
	if err != nil {
		return err
	}

	rec, release := r.reconciler(nil)
	defer release()

	var result *tasks.TagUpdateResult
	err = r.run(ctx, fmt.Sprintf("Renaming %d files", len(files)), true, func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = rec.RenameFromTags(ctx, files, progress)
		return runErr
	})
	if err != nil {
		return err
	}

	return r.report(cmd, formatter.FromTags(result), result)
}

// mediaFiles scans --path, falling back to [tags] media_path.
func (r *Runner) mediaFiles(cmd *cli.Command) ([]string, error) {
	root := cmd.String("path")
	if root == "" {
		root = r.config.Tags.MediaPath
	}
	if root == "" {
		return nil, fmt.Errorf("%w: --path or [tags] media_path is required", shared.ErrMissingArgument)
	}

	files, err := tagging.Scan(root)
	if err != nil {
		return nil, err
	}
	r.logger.Info("scanned media", "path", root, "files", len(files))
	return files, nil
}

func (r *Runner) tagsConfig(cmd *cli.Command) shared.TagsConfig {
	cfg := r.config.Tags
	for name, dst := range map[string]*bool{
		"overwrite-genre": &cfg.OverwriteGenre,
		"overwrite-year":  &cfg.OverwriteYear,
		"embed-cover":     &cfg.EmbedCover,
		"overwrite-cover": &cfg.OverwriteCover,
		"rename":          &cfg.RenameFile,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}
	return cfg
}
