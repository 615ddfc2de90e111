package cmds

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/thread"
)

func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <thread>",
		Short: "Print the conversation a node would send",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			store, err := thread.NewStore(s.StorageDir)
			if err != nil {
				return err
			}
			th, err := openThread(store, args[0])
			if err != nil {
				return err
			}

			nodeRef, _ := cmd.Flags().GetString("node")
			node, err := pickNode(th.Doc, nodeRef)
			if err != nil {
				return err
			}

			chain, err := document.CollectAncestors(node)
			if err != nil {
				return err
			}
			conv := conversation.Build(chain, s.Role())

			format, _ := cmd.Flags().GetString("format")
			render, _ := cmd.Flags().GetBool("render")
			w := cmd.OutOrStdout()

			switch format {
			case "json":
				data, err := json.MarshalIndent(conv, "", "  ")
				if err != nil {
					return errors.Wrap(err, "encoding conversation")
				}
				fmt.Fprintln(w, string(data))

			case "yaml":
				data, err := yaml.Marshal(conv)
				if err != nil {
					return errors.Wrap(err, "encoding conversation")
				}
				fmt.Fprint(w, string(data))

			case "text":
				if render && isatty.IsTerminal(os.Stdout.Fd()) {
					var sb strings.Builder
					for _, msg := range conv {
						fmt.Fprintf(&sb, "## %s\n\n%s\n\n", msg.Role, strings.TrimRight(msg.Content, "\n"))
					}
					styled, err := glamour.Render(sb.String(), "dark")
					if err != nil {
						return errors.Wrap(err, "rendering conversation")
					}
					fmt.Fprint(w, styled)
					return nil
				}
				for _, msg := range conv {
					fmt.Fprintln(w, msg.View())
				}

			default:
				return errors.Errorf("unknown format %q (want text, yaml or json)", format)
			}
			return nil
		},
	}

	cmd.Flags().String("node", "last", "Outline path of the node to show")
	cmd.Flags().String("format", "text", "Output format (text, yaml, json)")
	cmd.Flags().Bool("render", false, "Render markdown to the terminal")
	return cmd
}
