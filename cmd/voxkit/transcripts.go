package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/storage"
)

func newTranscriptsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Manage saved transcripts",
		Long: `Manage transcripts saved by "voxkit transcribe" and POST /transcribe.

Examples:
  voxkit transcripts list
  voxkit transcripts show meeting_20260304_150405.txt
  voxkit transcripts rm meeting_20260304_150405.txt`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [prefix]",
			Short: "List saved transcripts",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(root)
				if err != nil {
					return err
				}
				prefix := ""
				if len(args) == 1 {
					prefix = args[0]
				}
				objects, err := store.List(cmd.Context(), prefix)
				if err != nil {
					return err
				}
				return printObjects(cmd.OutOrStdout(), objects)
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print a saved transcript",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(root)
				if err != nil {
					return err
				}
				rc, err := store.Download(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				defer rc.Close()
				_, err = io.Copy(cmd.OutOrStdout(), rc)
				return err
			},
		},
		&cobra.Command{
			Use:   "rm <name>...",
			Short: "Delete saved transcripts",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(root)
				if err != nil {
					return err
				}
				for _, name := range args {
					ok, err := store.Exists(cmd.Context(), name)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("transcript %q not found", name)
					}
					if err := store.Delete(cmd.Context(), name); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[*] Deleted %s\n", name)
				}
				return nil
			},
		},
	)
	return cmd
}

// openStore opens the transcript storage without starting any sidecar.
func openStore(root *rootOptions) (storage.Storage, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return storage.New(cfg.Storage, logger.New(&cfg.Logging, cfg.Name))
}

func printObjects(w io.Writer, objects []storage.Object) error {
	if len(objects) == 0 {
		_, err := fmt.Fprintln(w, "No transcripts saved")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
	for _, o := range objects {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Path, o.Size, o.Modified.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
