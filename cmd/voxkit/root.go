package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/voxkit/version"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "Speech transcription with speaker diarization",
		Long: `voxkit turns recordings into plain-text transcripts.

Speech recognition runs on a Whisper sidecar. With --diarize every line is
prefixed with the speaker who said it, using speaker embeddings from an
ECAPA-TDNN sidecar. With --translate an English translation is appended.

Examples:
  voxkit transcribe meeting.mp4
  voxkit transcribe interview.wav --diarize --max-speakers 2
  voxkit serve --config config.yml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: searched in ./cmd/voxkit, ./config and .)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file with VOXKIT_* variables")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newTranscribeCmd(opts),
		newServeCmd(opts),
		newTranscriptsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
