package services

import (
	"context"
	"io"

	"luckydraw/internal/importer"
	"luckydraw/internal/metrics"
	"luckydraw/internal/models"

	"github.com/google/logger"
)

// LotteryService ties the import validator, the store and the draw engine
// together for the HTTP layer.
type LotteryService struct {
	store  Store
	engine *Engine
}

// NewLotteryService creates a LotteryService. All writes go through engine so
// its pool counts stay current.
func NewLotteryService(store Store, engine *Engine) *LotteryService {
	return &LotteryService{
		store:  store,
		engine: engine,
	}
}

// Engine returns the draw engine.
func (s *LotteryService) Engine() *Engine {
	return s.engine
}

// PreviewParticipants parses an upload without saving anything.
func (s *LotteryService) PreviewParticipants(filename string, r io.Reader) models.ParseResult {
	result := importer.Parse(filename, r)
	rejected := len(result.Participants) == 0 && len(result.Errors) == 1 && result.Errors[0].Row == 0
	metrics.RecordImport(len(result.Participants), len(result.Errors), rejected)
	logger.Infof("Parsed %s: %d participants, %d errors", filename, len(result.Participants), len(result.Errors))
	return result
}

// ImportParticipants parses an upload and saves its valid rows, replacing
// the current set. Row errors do not block the save; an upload with no
// valid rows at all leaves the saved set untouched.
func (s *LotteryService) ImportParticipants(ctx context.Context, filename string, r io.Reader) (models.ParseResult, error) {
	result := s.PreviewParticipants(filename, r)
	if len(result.Participants) == 0 {
		return result, nil
	}
	if err := s.engine.ReplaceParticipants(ctx, result.Participants); err != nil {
		return result, err
	}
	logger.Infof("Saved %d participants from %s", len(result.Participants), filename)
	return result, nil
}

// GetParticipants returns the saved participants matching query.
func (s *LotteryService) GetParticipants(ctx context.Context, query string) ([]models.Participant, error) {
	list, err := s.store.Participants(ctx)
	if err != nil {
		return nil, err
	}
	return importer.Filter(list, query), nil
}

// GetWinners returns the winner list, most recent first.
func (s *LotteryService) GetWinners(ctx context.Context) ([]models.Winner, error) {
	return s.store.Winners(ctx)
}

// GetSettings returns the stored settings.
func (s *LotteryService) GetSettings(ctx context.Context) (models.Settings, error) {
	return s.store.Settings(ctx)
}

// ExportWinnersCSV renders the current winner list for download.
func (s *LotteryService) ExportWinnersCSV(ctx context.Context) (string, error) {
	winners, err := s.store.Winners(ctx)
	if err != nil {
		return "", err
	}
	return WinnersCSV(winners), nil
}
