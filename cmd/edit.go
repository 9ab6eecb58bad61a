package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
	"github.com/mattsolo1/grove-jupyter/pkg/watch"
)

var editUlog = grovelogging.NewUnifiedLogger("grove-jupyter.cmd.edit")

func NewEditCmd(svc **service.Service) *cobra.Command {
	var editWatch bool

	cmd := &cobra.Command{
		Use:   "edit <path>",
		Short: "Edit a remote file or notebook in $EDITOR",
		Long: `Open a remote file in your editor and save it back when the editor exits.
Notebooks are edited as cell scripts: each cell starts with a "# %%" line,
markdown cells with "# %% [markdown]".

With --watch every write of the local copy is saved immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("edit requires an interactive terminal")
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			s := *svc

			doc, err := s.OpenPath(ctx, args[0])
			if err != nil {
				return err
			}
			if doc.Binary {
				return fmt.Errorf("%s: %w", doc.Node.Path, service.ErrBinaryDocument)
			}

			wd, err := service.NewWorkdir(s.Config.Server)
			if err != nil {
				return err
			}
			keepLocal := ""
			defer func() { releaseWorkdir(ctx, wd, keepLocal) }()

			local, err := wd.Materialize(doc)
			if err != nil {
				return err
			}

			var watcher *watch.Watcher
			if editWatch {
				watcher, err = watch.New(local, func() {
					reportSave(ctx, s, wd, doc)
				}, s.Logger)
				if err != nil {
					return err
				}
				watcher.Start(ctx)
			}

			editor := s.EditorCommand(local)
			editor.Stdin = os.Stdin
			editor.Stdout = os.Stdout
			editor.Stderr = os.Stderr
			runErr := editor.Run()

			if watcher != nil {
				watcher.Stop()
			}
			if runErr != nil {
				keepLocal = local
				return fmt.Errorf("editor: %w", runErr)
			}

			return reportSave(ctx, s, wd, doc)
		},
	}

	cmd.Flags().BoolVarP(&editWatch, "watch", "w", false, "Save on every write, not only when the editor exits")

	return cmd
}

// reportSave pushes the local copy of doc when it changed and tells the
// user what happened.
func reportSave(ctx context.Context, s *service.Service, wd *service.Workdir, doc *service.Document) error {
	changed, err := s.SaveIfChanged(ctx, wd, doc)
	if err != nil {
		editUlog.Info("Save failed").
			Field("path", doc.Node.Path).
			Field("error", err.Error()).
			Pretty(fmt.Sprintf("✗ %s", err)).
			PrettyOnly().
			Log(ctx)
		return err
	}
	if changed {
		editUlog.Info("Saved").
			Field("path", doc.Node.Path).
			Pretty(fmt.Sprintf("✓ Saved %s", doc.Node.Path)).
			PrettyOnly().
			Log(ctx)
	}
	return nil
}

// releaseWorkdir removes wd unless it holds edits that did not reach the
// server. Those are left on disk and their paths printed.
func releaseWorkdir(ctx context.Context, wd *service.Workdir, keep string) []string {
	var kept []string
	if keep != "" {
		kept = append(kept, keep)
	} else {
		var err error
		kept, err = wd.Release()
		if err != nil {
			editUlog.Info("Could not remove workdir").
				Field("dir", wd.Dir()).
				Field("error", err.Error()).
				Pretty(fmt.Sprintf("Could not remove %s: %s", wd.Dir(), err)).
				PrettyOnly().
				Log(ctx)
		}
	}
	for _, p := range kept {
		editUlog.Info("Unsaved edits kept").
			Field("local", p).
			Pretty(fmt.Sprintf("Unsaved edits kept in %s", p)).
			PrettyOnly().
			Log(ctx)
	}
	return kept
}
