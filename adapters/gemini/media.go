package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
)

const sceneImageStyle = ". voxel pixel art style, soft lighting, child friendly, high quality 3D render."

// GenerateSceneImage draws prompt in the house style and returns a data URI.
// A placeholder URL is returned when the model answers without an image.
func (g *Gateway) GenerateSceneImage(ctx context.Context, prompt string) (string, error) {
	_, config := g.current()

	var url string
	err := g.observe(ctx, "scene_image", config.ImageModel, func(ctx context.Context) error {
		resp, err := g.generate(ctx, config.ImageModel, genai.Text(prompt+sceneImageStyle), &genai.GenerateContentConfig{})
		if err != nil {
			return err
		}
		if blob := inlineData(resp); blob != nil {
			url = audio.EncodeDataURI(blob.MIMEType, blob.Data)
			return nil
		}
		g.logger.Warn("No image in response, using placeholder", zap.String("prompt", prompt))
		url = GeminiHardcodedConfig.PlaceholderImage
		return nil
	})
	return url, err
}

// GenerateSpeech reads text aloud with a prebuilt voice. The data URI always
// declares its sample rate, 24 kHz mono unless the model says otherwise.
func (g *Gateway) GenerateSpeech(ctx context.Context, text, voice string) (string, error) {
	_, config := g.current()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text cannot be empty")
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	var uri string
	err := g.observe(ctx, "speech", config.TTSModel, func(ctx context.Context) error {
		resp, err := g.generate(ctx, config.TTSModel, genai.Text(text), cfg)
		if err != nil {
			return err
		}
		blob := inlineData(resp)
		if blob == nil {
			return fmt.Errorf("%w: no audio in speech response", ErrMalformedResponse)
		}
		format, err := audio.ParseMIMEType(blob.MIMEType, audio.L16Mono24K)
		if err != nil {
			return fmt.Errorf("%w: speech audio: %w", ErrMalformedResponse, err)
		}
		uri = audio.EncodeDataURI(format.MIMEType(), blob.Data)
		return nil
	})
	return uri, err
}

// TranscribeAudio converts 16 kHz mono PCM to text.
func (g *Gateway) TranscribeAudio(ctx context.Context, pcm []byte) (string, error) {
	_, config := g.current()
	if len(pcm) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(pcm, audio.L16Mono16K.MIMEType()),
		genai.NewPartFromText("Transcribe this audio message. Return only the text."),
	}, genai.RoleUser)}

	var text string
	err := g.observe(ctx, "transcribe", config.TextModel, func(ctx context.Context) error {
		resp, err := g.generate(ctx, config.TextModel, contents, &genai.GenerateContentConfig{})
		if err != nil {
			return err
		}
		text = strings.TrimSpace(responseText(resp))
		return nil
	})
	return text, err
}

// AnalyzeVideo describes what happens in a recorded baby cam clip.
func (g *Gateway) AnalyzeVideo(ctx context.Context, data []byte, mimeType string) (string, error) {
	_, config := g.current()
	if len(data) == 0 {
		return "", fmt.Errorf("no video data received")
	}

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText("What is happening in this video of a baby? Provide cute observations and developmental insights."),
	}, genai.RoleUser)}

	var text string
	err := g.observe(ctx, "analyze_video", config.ProModel, func(ctx context.Context) error {
		resp, err := g.generate(ctx, config.ProModel, contents, &genai.GenerateContentConfig{})
		if err != nil {
			return err
		}
		text = strings.TrimSpace(responseText(resp))
		if text == "" {
			text = GeminiHardcodedConfig.VideoFallbackText
		}
		return nil
	})
	return text, err
}

// GenerateFruitVideo asks the video model for a dancing fruit and polls the
// long running operation until the clip is ready.
func (g *Gateway) GenerateFruitVideo(ctx context.Context, fruit, language string) (*repositories.Video, error) {
	client, config := g.current()
	prompt := fmt.Sprintf("A cute 3D voxel %s dancing happily and singing a nursery rhyme in %s.", fruit, language)

	var video *repositories.Video
	err := g.observe(ctx, "fruit_video", config.VideoModel, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, time.Duration(config.VideoTimeoutSeconds)*time.Second)
		defer cancel()

		op, err := client.Models.GenerateVideos(ctx, config.VideoModel, prompt, nil, &genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			Resolution:     "720p",
			AspectRatio:    "16:9",
		})
		if err != nil {
			return err
		}

		ticker := time.NewTicker(time.Duration(config.VideoPollSeconds) * time.Second)
		defer ticker.Stop()
		for !op.Done {
			select {
			case <-ctx.Done():
				return fmt.Errorf("video generation did not finish: %w", ctx.Err())
			case <-ticker.C:
			}
			g.logger.Debug("Polling video operation", zap.String("operation", op.Name))
			op, err = client.Operations.GetVideosOperation(ctx, op, nil)
			if err != nil {
				return err
			}
		}

		if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
			return fmt.Errorf("%w: operation finished without a video", ErrMalformedResponse)
		}
		generated := op.Response.GeneratedVideos[0].Video

		data := generated.VideoBytes
		if len(data) == 0 {
			data, err = client.Files.Download(ctx, genai.NewDownloadURIFromVideo(generated), nil)
			if err != nil {
				return fmt.Errorf("failed to download video: %w", err)
			}
		}

		mimeType := generated.MIMEType
		if mimeType == "" {
			mimeType = "video/mp4"
		}
		video = &repositories.Video{Data: data, MIMEType: mimeType}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return video, nil
}
