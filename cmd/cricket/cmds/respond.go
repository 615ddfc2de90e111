package cmds

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/cricket/pkg/events"
	"github.com/go-go-golems/cricket/pkg/thread"
	"github.com/go-go-golems/cricket/pkg/transport"
)

func NewRespondCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respond <thread>",
		Short: "Generate a model response at a node and stream it into the thread",
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

			verbose, _ := cmd.Flags().GetBool("verbose")
			routerOptions := []events.EventRouterOption{}
			if verbose {
				routerOptions = append(routerOptions, events.WithVerbose(true))
			}
			router, err := events.NewEventRouter(routerOptions...)
			if err != nil {
				return errors.Wrap(err, "creating event router")
			}
			defer func() {
				_ = router.Close()
			}()

			sink := events.NewWatermillSink(router.Publisher, "chat")
			router.AddHandler("chat", "chat", events.StepPrinterFunc("", cmd.OutOrStdout()))

			engine, err := transport.FromSettings(s,
				transport.WithSink(sink),
				transport.WithThreadID(th.Name()),
			)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			eg := errgroup.Group{}
			eg.Go(func() error {
				defer cancel()
				return router.Run(ctx)
			})
			eg.Go(func() error {
				defer cancel()
				<-router.Running()

				pending, err := thread.Respond(ctx, th.Doc, node, s.Role(), engine)
				if err != nil {
					return err
				}
				sendErr := pending.Wait(ctx)

				// Let the engine wind down before saving so an interrupted
				// run keeps its partial output.
				<-pending.Done()
				if err := store.Save(th); err != nil {
					log.Error().Err(err).Str("path", th.Path).Msg("saving thread failed")
					if sendErr != nil {
						return sendErr
					}
					return err
				}
				if sendErr != nil {
					return sendErr
				}

				log.Info().
					Str("node", th.Doc.OutlinePath(pending.Node())).
					Str("path", th.Path).
					Msg("saved response")
				return nil
			})

			return eg.Wait()
		},
	}

	cmd.Flags().String("node", "last", "Outline path of the node to respond at")
	cmd.Flags().Bool("verbose", false, "Verbose event router logging")
	return cmd
}
