package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-jupyter/pkg/models"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

var listUlog = grovelogging.NewUnifiedLogger("grove-jupyter.cmd.list")

func NewListCmd(svc **service.Service) *cobra.Command {
	var (
		listJSON      bool
		listRecursive bool
	)

	cmd := &cobra.Command{
		Use:     "list [path]",
		Short:   "List a directory on the server",
		Aliases: []string{"ls"},
		Long: `List the entries of a directory on the contents server.

Examples:
  jx ls                  # List the server root
  jx ls work/analysis    # List a directory
  jx ls -r work --json   # Walk a directory tree as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s := *svc

			dir := "/"
			if len(args) > 0 {
				dir = args[0]
			}

			var (
				nodes []*models.Node
				err   error
			)
			if listRecursive {
				nodes, err = walk(ctx, s, dir)
			} else {
				nodes, err = s.List(ctx, dir)
			}
			if err != nil {
				return err
			}

			if len(nodes) == 0 {
				pretty := fmt.Sprintf("No entries in %s", models.CleanPath(dir))
				if listJSON {
					pretty = "[]"
				}
				listUlog.Info("No entries found").
					Field("path", models.CleanPath(dir)).
					Pretty(pretty).
					PrettyOnly().
					Log(ctx)
				return nil
			}

			if listJSON {
				return outputJSON(os.Stdout, nodes)
			}
			printNodesTable(os.Stdout, nodes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "List subdirectories too")

	return cmd
}

// walk lists dir and every directory below it, depth first.
func walk(ctx context.Context, s *service.Service, dir string) ([]*models.Node, error) {
	nodes, err := s.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var out []*models.Node
	for _, n := range nodes {
		out = append(out, n)
		if !n.Expandable() {
			continue
		}
		children, err := walk(ctx, s, n.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

func printNodesTable(out io.Writer, nodes []*models.Node) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	// Print header
	fmt.Fprintln(w, "KIND\tNAME\tPATH")
	fmt.Fprintln(w, "---------\t------------------------\t------------------------")

	for _, n := range nodes {
		name := n.Name
		if n.Expandable() {
			name += "/"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", kindLabel(n.Kind), truncateString(name, 40), n.Path)
	}

	w.Flush()
}

var titleCaser = cases.Title(language.English)

func kindLabel(kind models.NodeKind) string {
	return titleCaser.String(strings.ToLower(string(kind)))
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func outputJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
