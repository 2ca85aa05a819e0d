package models

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// TranslationCache maps a result's cache key to its translation. It has no
// locking of its own; ResultStore guards it together with the results.
type TranslationCache map[string]string

// Filter selects results by membership. Empty fields do not filter.
type Filter struct {
	Platforms []Platform
	Languages []string
	Series    []string
}

// Stats summarises the accumulated results for the dashboard.
type Stats struct {
	Total       int              `json:"total"`
	Languages   int              `json:"languages"`
	Platforms   int              `json:"platforms"`
	ByPlatform  map[Platform]int `json:"by_platform"`
	ByLanguage  map[string]int   `json:"by_language"`
	LanguageSet []string         `json:"language_set"`
	PlatformSet []Platform       `json:"platform_set"`
}

// ResultStore is an append-only, ordered accumulator of search results for
// one session, plus the translation cache for those results.
type ResultStore struct {
	mu           sync.RWMutex
	results      []SearchResult
	index        map[uuid.UUID]int
	translations TranslationCache
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		index:        make(map[uuid.UUID]int),
		translations: make(TranslationCache),
	}
}

// Append adds results in order, assigning an ID to any result without one.
// Results are never deduplicated.
func (s *ResultStore) Append(results ...SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		s.index[r.ID] = len(s.results)
		s.results = append(s.results, r)
	}
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// All returns a copy of every result in insertion order.
func (s *ResultStore) All() []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SearchResult(nil), s.results...)
}

// Get returns the result with the given ID.
func (s *ResultStore) Get(id uuid.UUID) (SearchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return SearchResult{}, false
	}
	return s.results[i], true
}

// FilterByPlatform keeps results whose platform is in platforms. An empty
// set returns every result unchanged.
func (s *ResultStore) FilterByPlatform(platforms []Platform) []SearchResult {
	return s.Filter(Filter{Platforms: platforms})
}

// FilterByLanguage keeps results whose language is in languages. An empty
// set returns every result unchanged.
func (s *ResultStore) FilterByLanguage(languages []string) []SearchResult {
	return s.Filter(Filter{Languages: languages})
}

// Filter applies every non-empty membership filter in f.
func (s *ResultStore) Filter(f Filter) []SearchResult {
	platforms := make(map[Platform]bool, len(f.Platforms))
	for _, p := range f.Platforms {
		platforms[p] = true
	}
	languages := toSet(f.Languages)
	series := toSet(f.Series)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SearchResult, 0, len(s.results))
	for _, r := range s.results {
		if len(platforms) > 0 && !platforms[r.Platform] {
			continue
		}
		if len(languages) > 0 && !languages[r.Language] {
			continue
		}
		if len(series) > 0 && !series[r.Series] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Stats counts results per platform and language.
func (s *ResultStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Total:      len(s.results),
		ByPlatform: make(map[Platform]int),
		ByLanguage: make(map[string]int),
	}
	for _, r := range s.results {
		st.ByPlatform[r.Platform]++
		st.ByLanguage[r.Language]++
	}
	for l := range st.ByLanguage {
		st.LanguageSet = append(st.LanguageSet, l)
	}
	for p := range st.ByPlatform {
		st.PlatformSet = append(st.PlatformSet, p)
	}
	sort.Strings(st.LanguageSet)
	sort.Slice(st.PlatformSet, func(i, j int) bool { return st.PlatformSet[i] < st.PlatformSet[j] })
	st.Languages = len(st.LanguageSet)
	st.Platforms = len(st.PlatformSet)
	return st
}

// Translation returns the cached translation for key.
func (s *ResultStore) Translation(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.translations[key]
	return v, ok
}

// StoreTranslation caches a translation. Keys that are not the ID of a
// stored result are dropped, so a translation that completes after Clear
// cannot reappear.
func (s *ResultStore) StoreTranslation(key, value string) {
	id, err := uuid.Parse(key)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; !ok {
		return
	}
	s.translations[key] = value
}

// TranslationCount returns the number of cached translations.
func (s *ResultStore) TranslationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.translations)
}

// Clear empties the results and the translation cache in one step.
func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.index = make(map[uuid.UUID]int)
	s.translations = make(TranslationCache)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
