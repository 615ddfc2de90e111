package cmds

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"

	"github.com/go-go-golems/cricket/pkg/document"
	"github.com/go-go-golems/cricket/pkg/quoting"
	"github.com/go-go-golems/cricket/pkg/thread"
)

func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create a thread, optionally seeded with a quoted region",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}

			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			regionFile, _ := cmd.Flags().GetString("region-file")
			seedFile, _ := cmd.Flags().GetString("seed-file")
			lang, _ := cmd.Flags().GetString("lang")
			interactive, _ := cmd.Flags().GetBool("interactive")
			markdownFile, _ := cmd.Flags().GetString("from-markdown")

			var imported *document.Document
			if markdownFile != "" {
				f, err := os.Open(markdownFile)
				if err != nil {
					return errors.Wrap(err, "opening markdown file")
				}
				imported, err = document.FromMarkdown(f)
				_ = f.Close()
				if err != nil {
					return errors.Wrapf(err, "importing %s", markdownFile)
				}
			}

			seed := thread.Seed{
				Data: map[string]interface{}{
					"name": name,
					"file": regionFile,
					"lang": lang,
				},
			}

			if regionFile != "" {
				raw, err := os.ReadFile(regionFile)
				if err != nil {
					return errors.Wrap(err, "reading region file")
				}

				pipeline, err := quoting.PipelineFromNames(s.RegionFilters)
				if err != nil {
					return err
				}

				sc := quoting.DetectSource(regionFile, string(raw))
				if lang != "" {
					sc = quoting.ForLanguage(lang)
				}
				seed.Region = pipeline.Apply(string(raw), sc)
			}

			if seedFile != "" {
				raw, err := os.ReadFile(seedFile)
				if err != nil {
					return errors.Wrap(err, "reading seed file")
				}
				seed.Template = string(raw)
			}

			if interactive {
				ui := &input.UI{Writer: os.Stdout, Reader: os.Stdin}
				answer, err := ui.Ask("Opening message", &input.Options{
					Required: true,
					Loop:     true,
				})
				if err != nil {
					return errors.Wrap(err, "reading opening message")
				}
				if seed.Template != "" {
					seed.Template += "\n" + answer
				} else {
					seed.Template = answer
				}
			}

			// Render before touching the store so a bad template leaves no
			// file behind.
			if _, err := seed.Render(); err != nil {
				return err
			}

			if err := os.MkdirAll(s.StorageDir, 0o755); err != nil {
				return errors.Wrap(err, "creating storage directory")
			}
			store, err := thread.NewStore(s.StorageDir)
			if err != nil {
				return err
			}

			th, err := store.NewThread(name)
			if err != nil {
				return err
			}
			if imported != nil {
				imported.Root().Body = th.Doc.Root().Body + imported.Root().Body
				th.Doc = imported
			}
			if _, err := thread.BootstrapSeeded(th.Doc, s.Role(), seed); err != nil {
				return err
			}
			if err := store.Save(th); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), th.Path)
			return nil
		},
	}

	cmd.Flags().String("region-file", "", "File whose contents seed the thread as a quoted region")
	cmd.Flags().String("lang", "", "Force the region's language instead of detecting it")
	cmd.Flags().String("seed-file", "", "Template file rendered into the opening message")
	cmd.Flags().String("from-markdown", "", "Markdown file imported as the thread's starting outline")
	cmd.Flags().Bool("interactive", false, "Prompt for the opening message")
	return cmd
}
