package fruitvideo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/saga"
)

// DefaultTimeout bounds a whole fruit video run, polling included
const DefaultTimeout = 11 * time.Minute

// Service generates fruit videos using the saga pattern
type Service struct {
	sagaManager *saga.Manager
	logger      *zap.Logger
}

// NewService creates a new fruit video service and registers its saga
func NewService(sagaManager *saga.Manager, gateway repositories.Gateway, media repositories.MediaStore, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sagaManager.RegisterDefinition(NewSagaDefinition(gateway, media, timeout, logger))
	return &Service{
		sagaManager: sagaManager,
		logger:      logger,
	}
}

// Generate produces a video of fruit narrated in language. current reports
// whether the caller still wants the result; when it returns false the
// stored video is deleted and ErrSuperseded is returned.
func (s *Service) Generate(ctx context.Context, fruit, language string, current func() bool) (*entities.VideoResult, error) {
	data := saga.SagaData{
		DataKeyFruit:    fruit,
		DataKeyLanguage: language,
	}
	if current != nil {
		data[DataKeyCurrent] = current
	}

	instance, err := s.sagaManager.Execute(ctx, DefinitionID, data)
	if err != nil {
		return nil, err
	}

	id, _ := instance.Data[DataKeyMediaID].(string)
	video, _ := instance.Data[DataKeyVideo].(*repositories.Video)
	if id == "" || video == nil {
		return nil, fmt.Errorf("fruit video saga finished without a video")
	}
	return &entities.VideoResult{
		Fruit:    fruit,
		MediaID:  id,
		URL:      "/media/" + id,
		MIMEType: video.MIMEType,
	}, nil
}
