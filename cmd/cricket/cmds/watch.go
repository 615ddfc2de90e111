package cmds

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/cricket/pkg/thread"
)

func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the storage directory and reprint threads as they change",
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

			debounce, _ := cmd.Flags().GetDuration("debounce")

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return errors.Wrap(err, "creating watcher")
			}
			defer func() {
				_ = watcher.Close()
			}()

			if err := watcher.Add(store.Dir); err != nil {
				return errors.Wrap(err, "watching storage directory")
			}
			log.Info().Str("dir", store.Dir).Msg("watching for thread changes")

			w := cmd.OutOrStdout()
			pending := map[string]time.Time{}
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !store.Owns(event.Name) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					pending[event.Name] = time.Now()

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("watch error")

				case <-ticker.C:
					for path, at := range pending {
						if time.Since(at) < debounce {
							continue
						}
						delete(pending, path)

						th, err := store.Load(path)
						if err != nil {
							log.Warn().Err(err).Str("path", path).Msg("skipping unreadable thread")
							continue
						}
						fmt.Fprintf(w, "--- %s\n", th.Name())
						fmt.Fprint(w, th.Doc.String())
					}
				}
			}
		},
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period before a changed thread is reprinted")
	return cmd
}
