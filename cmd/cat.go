package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-jupyter/pkg/notebook"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

func NewCatCmd(svc **service.Service) *cobra.Command {
	var catJSON bool

	cmd := &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file or notebook",
		Long: `Print a remote file. Notebooks are printed as cell scripts, the same
text that "jx edit" opens in the editor.

Examples:
  jx cat notes.md
  jx cat analysis.ipynb          # Cell script
  jx cat analysis.ipynb --json   # Notebook JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s := *svc

			doc, err := s.OpenPath(ctx, args[0])
			if err != nil {
				return err
			}

			var out []byte
			switch {
			case doc.Kind == service.DocumentNotebook && catJSON:
				out, err = notebook.Encode(doc.Notebook)
			case doc.Kind == service.DocumentNotebook:
				out, err = notebook.RenderScript(doc.Notebook, &notebook.Header{
					Path:   doc.Node.Path,
					Server: s.Config.Server,
					Kernel: doc.Notebook.KernelName(),
				})
			case doc.Binary:
				return fmt.Errorf("%s is a binary file", doc.Node.Path)
			default:
				out = []byte(doc.Text)
			}
			if err != nil {
				return err
			}

			_, err = os.Stdout.Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&catJSON, "json", false, "Print notebooks as JSON")

	return cmd
}
