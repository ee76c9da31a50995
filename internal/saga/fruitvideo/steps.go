package fruitvideo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/saga"
)

// DefinitionID is the id the fruit video saga is registered under
const DefinitionID = "fruit_video"

// Data keys for the fruit video saga
const (
	DataKeyFruit    = "fruit"
	DataKeyLanguage = "language"
	DataKeyVideo    = "video"
	DataKeyMediaID  = "media_id"
	DataKeyCurrent  = "current"
)

// ErrSuperseded is returned when the view that asked for the video no longer
// wants it.
var ErrSuperseded = errors.New("fruit video superseded")

// SagaDefinition generates a fruit video, stores it as a media blob and hands
// it to the requesting view. The stored blob is deleted if the hand-off fails.
type SagaDefinition struct {
	gateway repositories.Gateway
	media   repositories.MediaStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewSagaDefinition creates a new fruit video saga definition
func NewSagaDefinition(gateway repositories.Gateway, media repositories.MediaStore, timeout time.Duration, logger *zap.Logger) *SagaDefinition {
	return &SagaDefinition{
		gateway: gateway,
		media:   media,
		timeout: timeout,
		logger:  logger,
	}
}

func (d *SagaDefinition) ID() string {
	return DefinitionID
}

func (d *SagaDefinition) Timeout() time.Duration {
	return d.timeout
}

func (d *SagaDefinition) Steps() []saga.Step {
	return []saga.Step{
		&generateStep{gateway: d.gateway, logger: d.logger},
		&storeStep{media: d.media, logger: d.logger},
		&handOffStep{},
	}
}

type generateStep struct {
	gateway repositories.Gateway
	logger  *zap.Logger
}

func (s *generateStep) ID() saga.StepID {
	return "generate_video"
}

func (s *generateStep) Execute(ctx context.Context, data saga.SagaData) error {
	fruit, _ := data[DataKeyFruit].(string)
	language, _ := data[DataKeyLanguage].(string)
	if fruit == "" {
		return fmt.Errorf("missing fruit")
	}

	video, err := s.gateway.GenerateFruitVideo(ctx, fruit, language)
	if err != nil {
		return err
	}
	if len(video.Data) == 0 {
		return fmt.Errorf("%w: empty video", repositories.ErrMalformedResponse)
	}
	data[DataKeyVideo] = video

	s.logger.Info("Fruit video generated",
		zap.String("fruit", fruit),
		zap.Int("bytes", len(video.Data)))
	return nil
}

// Compensate is a no-op: nothing has been stored yet.
func (s *generateStep) Compensate(ctx context.Context, data saga.SagaData) error {
	return nil
}

type storeStep struct {
	media  repositories.MediaStore
	logger *zap.Logger
}

func (s *storeStep) ID() saga.StepID {
	return "store_video"
}

func (s *storeStep) Execute(ctx context.Context, data saga.SagaData) error {
	video, ok := data[DataKeyVideo].(*repositories.Video)
	if !ok {
		return fmt.Errorf("missing video")
	}

	blob := &repositories.MediaBlob{MIMEType: video.MIMEType, Data: video.Data}
	if err := s.media.Put(ctx, blob); err != nil {
		return fmt.Errorf("failed to store video: %w", err)
	}
	data[DataKeyMediaID] = blob.ID
	return nil
}

func (s *storeStep) Compensate(ctx context.Context, data saga.SagaData) error {
	id, _ := data[DataKeyMediaID].(string)
	if id == "" {
		return nil
	}
	s.logger.Info("Deleting orphaned fruit video", zap.String("mediaID", id))
	return s.media.Delete(ctx, id)
}

// handOffStep fails when the requesting view was unmounted or re-run while
// the video was being generated.
type handOffStep struct{}

func (s *handOffStep) ID() saga.StepID {
	return "hand_off"
}

func (s *handOffStep) Execute(ctx context.Context, data saga.SagaData) error {
	if current, ok := data[DataKeyCurrent].(func() bool); ok && !current() {
		return ErrSuperseded
	}
	return nil
}

func (s *handOffStep) Compensate(ctx context.Context, data saga.SagaData) error {
	return nil
}
