package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-jupyter/pkg/notebook"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

var putUlog = grovelogging.NewUnifiedLogger("grove-jupyter.cmd.put")

func NewPutCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-file> [remote-path]",
		Short: "Upload a local file",
		Long: `Upload a local file to the server, replacing the remote copy.
The remote path defaults to the local file name. A cell script uploaded to
an .ipynb path is converted to a notebook.

Examples:
  jx put notes.md work/notes.md
  jx put analysis.ipynb.py work/analysis.ipynb`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s := *svc

			local := args[0]
			data, err := os.ReadFile(local)
			if err != nil {
				return fmt.Errorf("read %s: %w", local, err)
			}

			remote := filepath.Base(local)
			if len(args) > 1 {
				remote = args[1]
			} else if trimmed := strings.TrimSuffix(remote, notebook.ScriptExt); strings.HasSuffix(trimmed, ".ipynb") {
				remote = trimmed
			}

			doc, err := service.NewDocument(remote, local, data)
			if err != nil {
				return err
			}
			if err := s.Save(ctx, doc); err != nil {
				return err
			}

			putUlog.Info("Uploaded").
				Field("local", local).
				Field("path", doc.Node.Path).
				Pretty(fmt.Sprintf("✓ Uploaded %s to %s", local, doc.Node.Path)).
				PrettyOnly().
				Log(ctx)
			return nil
		},
	}
	return cmd
}
