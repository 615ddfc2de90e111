package cmds

import (
	"fmt"

	"github.com/mb0/glob"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/cricket/pkg/thread"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List threads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			store, err := thread.NewStore(s.StorageDir)
			if err != nil {
				return err
			}

			pattern, _ := cmd.Flags().GetString("match")
			paths, err := store.List()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, path := range paths {
				title := ""
				if th, err := store.Load(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("skipping unreadable thread")
					continue
				} else {
					title = th.Title()
				}

				if pattern != "" {
					onName, err := glob.Match(pattern, path)
					if err != nil {
						return errors.Wrapf(err, "bad match pattern %q", pattern)
					}
					onTitle, _ := glob.Match(pattern, title)
					if !onName && !onTitle {
						continue
					}
				}

				if title != "" {
					fmt.Fprintf(w, "%s\t%s\n", path, title)
				} else {
					fmt.Fprintln(w, path)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("match", "", "Only list threads whose path or title matches the glob")
	return cmd
}
