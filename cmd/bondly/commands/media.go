package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/Naimurthedang/bondly-main/adapters/stt"
	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

var (
	decodeFormat     = audio.L16Mono24K
	transcribeRate   int
	catalogJSON      bool
	decodeOutputFile string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <input>",
	Short: "Convert a base64 speech payload into a WAV file",
	Long: `Convert a base64 speech payload into a WAV file.

The input holds either a data URI (data:audio/pcm;rate=24000;base64,...) or
bare base64 L16 samples. Parameters missing from the data URI are taken from
--rate and --channels.

Examples:
  bondly decode speech.txt -o speech.wav
  bondly decode --rate 16000 capture.b64 -o capture.wav`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if decodeOutputFile == "" {
			return fmt.Errorf("output file is required, use -o flag")
		}
		if err := decodeFormat.Validate(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}

		payload := strings.TrimSpace(string(data))
		var buf *audio.Buffer
		if strings.HasPrefix(payload, "data:") {
			buf, err = audio.DecodeSpeech(payload, decodeFormat)
		} else {
			var pcm []byte
			pcm, err = audio.DecodeBase64(payload)
			if err == nil {
				buf, err = audio.DecodePCM(pcm, decodeFormat.SampleRate, decodeFormat.Channels)
			}
		}
		if err != nil {
			return err
		}

		out, err := os.Create(decodeOutputFile)
		if err != nil {
			return err
		}
		if err := audio.WriteWAV(out, buf); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %s\n", decodeOutputFile, buf.Format(), buf.Duration())
		return nil
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <input>",
	Short: "Transcribe a raw L16 recording with Google Speech",
	Long: `Transcribe a raw mono L16 recording with Google Cloud Speech.

The recording is resampled to 16 kHz before it is sent.

Examples:
  bondly transcribe --rate 48000 question.pcm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		pcm, err := audio.ResamplePCM(data, audio.Format{SampleRate: transcribeRate, Channels: 1}, audio.L16Mono16K.SampleRate)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		text, err := stt.NewGoogleSpeechToText(stt.NewGoogleConfigFromEnv(), logger).TranscribeAudio(ctx, pcm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the built-in catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := entities.LoadCatalog()
		if err != nil {
			return err
		}

		var out []byte
		if catalogJSON {
			out, err = json.MarshalIndent(catalog, "", "  ")
		} else {
			out, err = yaml.Marshal(catalog)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	decodeCmd.Flags().IntVar(&decodeFormat.SampleRate, "rate", decodeFormat.SampleRate, "sample rate when not declared")
	decodeCmd.Flags().IntVar(&decodeFormat.Channels, "channels", decodeFormat.Channels, "channel count when not declared")
	decodeCmd.Flags().StringVarP(&decodeOutputFile, "output", "o", "", "output WAV file")

	transcribeCmd.Flags().IntVar(&transcribeRate, "rate", audio.L16Mono16K.SampleRate, "sample rate of the recording")

	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print JSON instead of YAML")
}
