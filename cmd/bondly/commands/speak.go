package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Naimurthedang/bondly-main/adapters/gemini"
	"github.com/Naimurthedang/bondly-main/adapters/speaker"
	"github.com/Naimurthedang/bondly-main/adapters/tts"
	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

var lullabyProfile = entities.DefaultProfile()

var lullabyCmd = &cobra.Command{
	Use:   "lullaby",
	Short: "Compose a lullaby and sing it on the speaker",
	Long: `Compose a lullaby with Gemini, synthesize it and play it on the default
audio device. The lyrics are printed to stdout.

Examples:
  bondly lullaby --name Noah --age 3
  bondly lullaby --mood sleepy --language Spanish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lullabyProfile.Validate(); err != nil {
			return err
		}
		catalog, err := entities.LoadCatalog()
		if err != nil {
			return err
		}
		mood := lullabyProfile.Mood
		if mood == "" {
			mood = catalog.LullabyMood
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		gateway, err := gemini.NewGateway(ctx, gemini.NewGeminiConfigFromEnv(), logger)
		if err != nil {
			return err
		}
		lullaby, err := gateway.GenerateLullaby(ctx, lullabyProfile, mood)
		if err != nil {
			return fmt.Errorf("compose lullaby: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), lullaby.Lyrics)

		uri, err := gateway.GenerateSpeech(ctx, lullaby.Lyrics, catalog.Voices.Default)
		if err != nil {
			return fmt.Errorf("synthesize lullaby: %w", err)
		}
		buf, err := audio.DecodeSpeech(uri, audio.L16Mono24K)
		if err != nil {
			return err
		}
		return play(ctx, buf)
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Speak text through ElevenLabs on the speaker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		chunks, err := engine.ConvertTextToSpeech(ctx, args[0])
		if err != nil {
			return err
		}
		var pcm []byte
		for chunk := range chunks {
			pcm = append(pcm, chunk...)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		format, err := engine.Format()
		if err != nil {
			return err
		}
		buf, err := audio.DecodePCM(pcm, format.SampleRate, format.Channels)
		if err != nil {
			return err
		}
		return play(ctx, buf)
	},
}

func init() {
	lullabyCmd.Flags().StringVar(&lullabyProfile.Name, "name", lullabyProfile.Name, "child's name")
	lullabyCmd.Flags().IntVar(&lullabyProfile.Age, "age", lullabyProfile.Age, "child's age in years")
	lullabyCmd.Flags().StringVar(&lullabyProfile.Language, "language", lullabyProfile.Language, "lyrics language")
	lullabyCmd.Flags().StringVar(&lullabyProfile.Mood, "mood", "", "lullaby mood (default from catalog)")
}

// play plays buf on the default audio device and blocks until it ends or
// ctx is cancelled.
func play(ctx context.Context, buf *audio.Buffer) error {
	player := audio.NewPlayer(speaker.NewOutput(logger), logger)
	pb, err := player.Play(buf)
	if err != nil {
		return err
	}
	select {
	case <-pb.Done():
	case <-ctx.Done():
		pb.Stop()
	}
	return nil
}
