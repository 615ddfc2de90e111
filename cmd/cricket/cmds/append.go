package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-go-golems/cricket/pkg/thread"
)

func NewAppendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "append <thread>",
		Short: "Append an empty user turn at the top level",
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

			node := thread.Bootstrap(th.Doc, s.Role())
			if err := store.Save(th); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), th.Doc.OutlinePath(node))
			return nil
		},
	}
}
