package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

// resourceInfo is the metadata shown by `jx info`.
type resourceInfo struct {
	Name         string     `json:"name" yaml:"name"`
	Path         string     `json:"path" yaml:"path"`
	Kind         string     `json:"kind" yaml:"kind"`
	Format       string     `json:"format,omitempty" yaml:"format,omitempty"`
	Mimetype     string     `json:"mimetype,omitempty" yaml:"mimetype,omitempty"`
	Writable     bool       `json:"writable" yaml:"writable"`
	Size         *int64     `json:"size,omitempty" yaml:"size,omitempty"`
	Created      *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
}

func newResourceInfo(c *models.Contents) resourceInfo {
	return resourceInfo{
		Name:         c.Name,
		Path:         models.CleanPath(c.Path),
		Kind:         string(models.ParseNodeKind(c.Type)),
		Format:       c.Format,
		Mimetype:     c.Mimetype,
		Writable:     c.Writable,
		Size:         c.Size,
		Created:      c.Created,
		LastModified: c.LastModified,
	}
}

func NewInfoCmd(svc **service.Service) *cobra.Command {
	var (
		infoJSON bool
		infoYAML bool
	)

	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show metadata of a remote path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			s := *svc

			res, err := s.Stat(ctx, args[0])
			if err != nil {
				return err
			}
			info := newResourceInfo(res)

			switch {
			case infoJSON:
				return outputJSON(os.Stdout, info)
			case infoYAML:
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				if err := enc.Encode(info); err != nil {
					return fmt.Errorf("failed to marshal info to YAML: %w", err)
				}
				return enc.Close()
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", info.Name)
			fmt.Fprintf(w, "Path:\t%s\n", info.Path)
			fmt.Fprintf(w, "Kind:\t%s\n", kindLabel(models.NodeKind(info.Kind)))
			if info.Format != "" {
				fmt.Fprintf(w, "Format:\t%s\n", info.Format)
			}
			if info.Mimetype != "" {
				fmt.Fprintf(w, "Mimetype:\t%s\n", info.Mimetype)
			}
			fmt.Fprintf(w, "Writable:\t%t\n", info.Writable)
			if info.Size != nil {
				fmt.Fprintf(w, "Size:\t%d\n", *info.Size)
			}
			if info.LastModified != nil {
				fmt.Fprintf(w, "Modified:\t%s\n", info.LastModified.Local().Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&infoJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&infoYAML, "yaml", false, "Output in YAML format")

	return cmd
}
