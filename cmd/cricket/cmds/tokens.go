package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-go-golems/cricket/pkg/conversation"
	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/go-go-golems/cricket/pkg/tokens"
)

func NewTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens <thread>",
		Short: "Estimate the prompt tokens a node's conversation would use",
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

			model, _ := cmd.Flags().GetString("model")
			if model == "" {
				model = modelName(s)
			}

			chain, err := document.CollectAncestors(node)
			if err != nil {
				return err
			}
			conv := conversation.Build(chain, s.Role())

			w := cmd.OutOrStdout()
			for _, msg := range conv {
				n, err := tokens.CountText(msg.Content, model)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%8d  %s\n", n, msg.Role)
			}

			total, err := tokens.Count(conv, model)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%8d  total (%d messages, %s)\n", total, len(conv), model)
			return nil
		},
	}

	cmd.Flags().String("node", "last", "Outline path of the node to count for")
	cmd.Flags().String("model", "", "Model whose encoding to count with (default the configured model)")
	return cmd
}
