package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/wikitext"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
)

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.New().Named("sorter")
}

// IsGamePage reports whether a title is subject to sorting.
func (s *Service) IsGamePage(title string) bool {
	return s.gamesPrefix == "" || strings.HasPrefix(title, s.gamesPrefix)
}

// PageEvents reads the stored player events of a page and returns them ordered,
// without writing anything.
func (s *Service) PageEvents(ctx context.Context, title string) ([][]model.Event, error) {
	page, err := s.store.Get(ctx, title)
	if err != nil {
		return nil, err
	}
	raw, err := wikitext.GetParam(page.Text, s.gamesTemplate, s.eventsParam)
	if err != nil {
		return nil, err
	}
	return s.ParseText(ctx, raw)
}

// SortPage rewrites the player-events field of one game page in canonical
// order. Pages that are not game pages, have no games template or have an empty
// field are skipped. The page is written only when the field changes and
// saving is enabled.
func (s *Service) SortPage(ctx context.Context, runID, title string) (types.PageResult, error) {
	res := types.PageResult{Title: title}
	skip := func(reason string) (types.PageResult, error) {
		res.Outcome = types.OutcomeSkipped
		res.Reason = reason
		metrics.RecordPage(string(res.Outcome))
		s.log().Debug(ctx, "page skipped", logger.String("title", title), logger.String("reason", reason))
		return res, nil
	}
	fail := func(err error) (types.PageResult, error) {
		metrics.RecordPage(string(types.OutcomeFailed))
		return types.PageResult{}, fmt.Errorf("%s: %w", title, err)
	}

	if !s.IsGamePage(title) {
		return skip("not a game page")
	}

	page, err := s.store.Get(ctx, title)
	if err != nil {
		return fail(err)
	}

	raw, err := wikitext.GetParam(page.Text, s.gamesTemplate, s.eventsParam)
	switch {
	case errors.Is(err, wikitext.ErrTemplateNotFound), errors.Is(err, wikitext.ErrParamNotFound):
		return skip(err.Error())
	case err != nil:
		return fail(err)
	}
	if strings.TrimSpace(raw) == "" {
		return skip("no player events")
	}

	groups, err := s.ParseText(ctx, raw)
	if err != nil {
		return fail(err)
	}
	value, err := s.RenderField(groups)
	if err != nil {
		return fail(err)
	}
	for _, g := range groups {
		res.Events += len(g)
	}
	res.Value = value

	if value == raw {
		res.Outcome = types.OutcomeUnchanged
		metrics.RecordPage(string(res.Outcome))
		return res, nil
	}

	text, err := wikitext.SetParam(page.Text, s.gamesTemplate, s.eventsParam, value)
	if err != nil {
		return fail(err)
	}

	if s.showDiff {
		res.Diff = lineDiff(raw, value)
		s.log().Info(ctx, "player events reordered",
			logger.String("title", title),
			logger.String("diff", res.Diff),
		)
	}

	res.Outcome = types.OutcomeDryRun
	if s.save {
		if err := s.store.Save(ctx, repository.Page{Title: page.Title, Text: text, BaseTimestamp: page.BaseTimestamp}, s.editSummary); err != nil {
			return fail(err)
		}
		res.Outcome = types.OutcomeChanged
	}

	s.recordEdit(ctx, runID, title, page.Text, text)
	metrics.RecordPage(string(res.Outcome))
	s.log().Info(ctx, "page sorted",
		logger.String("title", title),
		logger.String("run_id", runID),
		logger.Int("events", res.Events),
		logger.Bool("saved", s.save),
	)
	return res, nil
}

func (s *Service) recordEdit(ctx context.Context, runID, title, oldText, newText string) {
	err := s.journal.Record(ctx, repository.Edit{
		RunID:   runID,
		Title:   title,
		OldHash: repository.Hash(oldText),
		NewHash: repository.Hash(newText),
		Summary: s.editSummary,
		Saved:   s.save,
	})
	if err != nil {
		metrics.RecordJournalWrite("error")
		s.log().Warn(ctx, "journal write failed", logger.String("title", title), logger.Error(err))
		return
	}
	metrics.RecordJournalWrite("ok")
}
