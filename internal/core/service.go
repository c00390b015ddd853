package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/buyside/internal/config"
	"github.com/JonMunkholm/buyside/internal/logging"
)

// LoadFunc produces a fresh Dataset. It is called at startup and on reload.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// ServiceConfig holds the Service settings derived from application config.
type ServiceConfig struct {
	View                 ViewOptions
	MaxTags              int
	LoadTimeout          time.Duration
	SummaryTimeout       time.Duration
	SummaryMaxConcurrent int
	SummaryMaxWait       time.Duration
}

// ServiceConfigFrom extracts Service settings from the application config.
func ServiceConfigFrom(cfg *config.Config) ServiceConfig {
	return ServiceConfig{
		View: ViewOptions{
			KeyFacts:      cfg.Lookup.KeyFacts,
			HiddenColumns: cfg.Lookup.HiddenColumns,
		},
		MaxTags:              cfg.Session.MaxTags,
		LoadTimeout:          cfg.Data.LoadTimeout,
		SummaryTimeout:       cfg.Summary.Timeout,
		SummaryMaxConcurrent: cfg.Summary.MaxConcurrent,
		SummaryMaxWait:       cfg.Summary.MaxWait,
	}
}

// NewSourceLoader returns a LoadFunc reading the configured sources.
// db may be nil when no pg: source is configured.
func NewSourceLoader(data config.DataConfig, db Querier) LoadFunc {
	return func(ctx context.Context) (*Dataset, error) {
		var plan LoadPlan
		var err error

		if plan.Factbook, err = ParseSources(data.FactbookSources, db); err != nil {
			return nil, err
		}
		if plan.Pipeline, err = ParseSources(data.PipelineSources, db); err != nil {
			return nil, err
		}
		if strings.TrimSpace(data.MappingSource) != "" {
			if plan.Mapping, err = ParseSource(data.MappingSource, db); err != nil {
				return nil, err
			}
		}

		return Load(ctx, plan)
	}
}

// Service provides the business logic for searching, tagging, summaries
// and reloads. The dataset is immutable and swapped atomically on reload.
type Service struct {
	load       LoadFunc
	summarizer Summarizer
	limiter    *SummaryLimiter
	cfg        ServiceConfig

	mu   sync.RWMutex
	data *Dataset
}

// NewService loads the dataset once and returns a ready Service.
// summarizer may be nil, in which case summaries report ErrSummaryNotConfigured.
func NewService(ctx context.Context, load LoadFunc, summarizer Summarizer, cfg ServiceConfig) (*Service, error) {
	s := &Service{
		load:       load,
		summarizer: summarizer,
		limiter:    NewSummaryLimiter(cfg.SummaryMaxConcurrent, cfg.SummaryMaxWait),
		cfg:        cfg,
	}

	data, err := s.loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	s.data = data

	return s, nil
}

func (s *Service) loadDataset(ctx context.Context) (*Dataset, error) {
	if s.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LoadTimeout)
		defer cancel()
	}

	data, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	return data, nil
}

func (s *Service) dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Names returns every searchable canonical name, sorted.
func (s *Service) Names() []string {
	return s.dataset().Names()
}

// Stats summarizes the current dataset.
func (s *Service) Stats() DatasetStats {
	return s.dataset().Stats()
}

// SummaryEnabled reports whether a summarizer is configured.
func (s *Service) SummaryEnabled() bool {
	return s.summarizer != nil
}

// ViewOptions returns the presentation settings applied to search results.
func (s *Service) ViewOptions() ViewOptions {
	return s.cfg.View
}

// Search matches a name against the current dataset.
// Returns ErrEmptyTerm when the term is blank.
func (s *Service) Search(ctx context.Context, term string) (*SearchResult, error) {
	result, err := s.dataset().Search(term, s.cfg.View)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("search",
		"term", result.Term,
		"brands", result.Brands.Len(),
		"pipeline", result.Pipeline.Len(),
		"combined", result.Combined.Len(),
		"fallback", result.Fallback,
	)

	return result, nil
}

// NewTagLog creates an empty tag log with the configured limit.
func (s *Service) NewTagLog() *TagLog {
	return NewTagLog(s.cfg.MaxTags)
}

// AddTag appends a tag for a search term to the caller's tag log.
// The term is standardized; a blank term returns ErrEmptyTerm.
func (s *Service) AddTag(ctx context.Context, log *TagLog, term, tag string) (TagEntry, error) {
	key := Standardize(term)
	if key == "" {
		return TagEntry{}, ErrEmptyTerm
	}

	entry, err := log.Append(key, tag)
	if err != nil {
		return TagEntry{}, err
	}

	logging.FromContext(ctx).Info("tag added", "term", key, "tag", entry.Tag, "tag_id", entry.ID)
	return entry, nil
}

// Summarize searches for term and asks the summarizer for a text summary.
// The result is returned even when summarizing fails so callers can still
// render it.
func (s *Service) Summarize(ctx context.Context, term string) (string, *SearchResult, error) {
	result, err := s.Search(ctx, term)
	if err != nil {
		return "", nil, err
	}

	if s.summarizer == nil {
		return "", result, ErrSummaryNotConfigured
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", result, err
	}
	defer s.limiter.Release()

	if s.cfg.SummaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SummaryTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.summarizer.Summarize(ctx, result)
	if err != nil {
		return "", result, err
	}

	logging.FromContext(ctx).Info("summary generated", "term", result.Term, "duration", time.Since(start))
	return text, result, nil
}

// Reload re-runs the loader and swaps in the new dataset. On failure the
// current dataset stays in place.
func (s *Service) Reload(ctx context.Context) (DatasetStats, error) {
	data, err := s.loadDataset(ctx)
	if err != nil {
		return DatasetStats{}, err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	return data.Stats(), nil
}

// Drain blocks until in-flight summaries complete or ctx is cancelled.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports summary concurrency for health checks.
func (s *Service) LimiterStatus() SummaryLimiterStatus {
	return s.limiter.Status()
}
