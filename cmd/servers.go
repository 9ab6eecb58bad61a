package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-jupyter/cmd/config"
)

var serversUlog = grovelogging.NewUnifiedLogger("grove-jupyter.cmd.servers")

// serverView hides tokens.
type serverView struct {
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	HasToken bool   `json:"has_token"`
	Timeout  string `json:"timeout,omitempty"`
	Selected bool   `json:"selected"`
}

func NewServersCmd() *cobra.Command {
	var serversJSON bool

	cmd := &cobra.Command{
		Use:         "servers",
		Short:       "List configured servers",
		Annotations: offline(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			servers, err := config.Servers()
			if err != nil {
				return err
			}
			selected, selErr := config.SelectServer()

			var views []serverView
			seen := false
			for _, s := range servers {
				v := serverView{
					Name:     s.Name,
					BaseURL:  s.BaseURL,
					HasToken: s.ResolvedToken() != "",
					Selected: selErr == nil && selected.Name == s.Name && selected.BaseURL == s.BaseURL,
				}
				if s.Timeout > 0 {
					v.Timeout = s.Timeout.String()
				}
				seen = seen || v.Selected
				views = append(views, v)
			}
			if selErr == nil && !seen {
				views = append([]serverView{{
					Name:     selected.Name,
					BaseURL:  selected.BaseURL,
					HasToken: selected.ResolvedToken() != "",
					Selected: true,
				}}, views...)
			}

			if len(views) == 0 {
				serversUlog.Info("No servers configured").
					Pretty("No servers configured. Add a servers list to ~/.config/jx/config.yaml or set JX_BASE_URL.").
					PrettyOnly().
					Log(ctx)
				return nil
			}

			if serversJSON {
				return outputJSON(os.Stdout, views)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, " \tNAME\tBASE URL\tTOKEN")
			for _, v := range views {
				mark := " "
				if v.Selected {
					mark = "*"
				}
				token := "-"
				if v.HasToken {
					token = "set"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, v.Name, v.BaseURL, token)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&serversJSON, "json", false, "Output in JSON format")

	return cmd
}
