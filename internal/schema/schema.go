package schema

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Command is the machine-readable description of one CLI command, for
// tooling that drives the CLI programmatically.
type Command struct {
	Path     string    `json:"path"`
	Use      string    `json:"use"`
	Short    string    `json:"short"`
	Flags    []Flag    `json:"flags,omitempty"`
	Children []Command `json:"children,omitempty"`
}

type Flag struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Usage   string `json:"usage"`
	Default string `json:"default,omitempty"`
}

// Describe walks the command tree from root, or from the command named by
// path ("wallet connect" style).
func Describe(root *cobra.Command, path string) (Command, error) {
	cmd, err := locate(root, path)
	if err != nil {
		return Command{}, err
	}
	return describe(cmd), nil
}

func locate(root *cobra.Command, path string) (*cobra.Command, error) {
	cmd := root
	for _, part := range strings.Fields(path) {
		next := findChild(cmd, part)
		if next == nil {
			return nil, fmt.Errorf("command not found: %s", path)
		}
		cmd = next
	}
	return cmd, nil
}

func findChild(cmd *cobra.Command, name string) *cobra.Command {
	for _, child := range cmd.Commands() {
		if child.Name() == name {
			return child
		}
		for _, alias := range child.Aliases {
			if alias == name {
				return child
			}
		}
	}
	return nil
}

func describe(cmd *cobra.Command) Command {
	out := Command{
		Path:  strings.TrimSpace(cmd.CommandPath()),
		Use:   cmd.Use,
		Short: cmd.Short,
	}
	cmd.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		out.Flags = append(out.Flags, Flag{
			Name:    f.Name,
			Type:    f.Value.Type(),
			Usage:   f.Usage,
			Default: f.DefValue,
		})
	})
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" {
			continue
		}
		out.Children = append(out.Children, describe(child))
	}
	return out
}
