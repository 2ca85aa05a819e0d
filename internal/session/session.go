// Package session holds per-browser dashboard state: the uploaded keyword
// table, accumulated results, credential overrides and the status of the
// running scan or sentiment analysis.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/Saul-Punybz/radar/internal/agents"
	"github.com/Saul-Punybz/radar/internal/keywords"
	"github.com/Saul-Punybz/radar/internal/models"
	"github.com/Saul-Punybz/radar/internal/providers"
	"github.com/Saul-Punybz/radar/internal/sentiment"
)

var (
	// ErrScanInProgress means the session already runs a scan.
	ErrScanInProgress = errors.New("a scan is already running for this session")
	// ErrAnalysisInProgress means the session already runs a sentiment analysis.
	ErrAnalysisInProgress = errors.New("a sentiment analysis is already running for this session")
)

// previewRows is how many grid rows are kept for display.
const previewRows = 10

// Session is the state of one dashboard visitor.
type Session struct {
	ID      string
	Results *models.ResultStore

	mu        sync.Mutex
	table     *keywords.Table
	tableName string
	preview   keywords.Grid
	creds     providers.Credentials
	lastSeen  time.Time

	scanning   bool
	cancelScan context.CancelFunc
	progress   agents.Progress
	lastReport *agents.Report
	lastErr    string

	analyzing bool
	sentiment *sentiment.Report
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, Results: models.NewResultStore(), lastSeen: now}
}

// TableInfo describes the uploaded keyword table.
type TableInfo struct {
	Name        string        `json:"name"`
	Orientation string        `json:"orientation"`
	Languages   []string      `json:"languages"`
	Series      []string      `json:"series"`
	Preview     keywords.Grid `json:"preview"`
}

// SetTable replaces the keyword table. Results are kept.
func (s *Session) SetTable(name string, grid keywords.Grid, t *keywords.Table) {
	preview := grid
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.tableName = name
	s.preview = preview
}

// Table returns the uploaded table, or nil.
func (s *Session) Table() *keywords.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// TableInfo returns the table summary and false when no table was uploaded.
func (s *Session) TableInfo() (TableInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return TableInfo{}, false
	}
	return TableInfo{
		Name:        s.tableName,
		Orientation: s.table.Orientation().String(),
		Languages:   s.table.Languages(),
		Series:      s.table.Series(),
		Preview:     s.preview,
	}, true
}

// SetCredentials replaces the session's credential overrides.
func (s *Session) SetCredentials(c providers.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = c
}

// Credentials returns the overrides merged over defaults.
func (s *Session) Credentials(defaults providers.Credentials) providers.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Merge(defaults)
}

// Overrides returns which credentials the session itself supplied.
func (s *Session) Overrides() providers.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// ScanStatus reports the running or last finished scan.
type ScanStatus struct {
	Running  bool            `json:"running"`
	Progress agents.Progress `json:"progress"`
	Report   *agents.Report  `json:"report,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BeginScan marks a scan as running. cancel is called by CancelScan.
func (s *Session) BeginScan(cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanning {
		return ErrScanInProgress
	}
	s.scanning = true
	s.cancelScan = cancel
	s.progress = agents.Progress{}
	s.lastReport = nil
	s.lastErr = ""
	return nil
}

// SetProgress records scan progress.
func (s *Session) SetProgress(p agents.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
}

// EndScan records the outcome of the running scan.
func (s *Session) EndScan(report agents.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	if s.cancelScan != nil {
		s.cancelScan()
		s.cancelScan = nil
	}
	s.lastReport = &report
	if err != nil {
		s.lastErr = err.Error()
	}
}

// CancelScan stops the running scan. It reports whether one was running.
func (s *Session) CancelScan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanning || s.cancelScan == nil {
		return false
	}
	s.cancelScan()
	return true
}

// ScanStatus returns a snapshot of the scan state.
func (s *Session) ScanStatus() ScanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScanStatus{Running: s.scanning, Progress: s.progress, Report: s.lastReport, Error: s.lastErr}
}

// BeginAnalysis marks a sentiment analysis as running.
func (s *Session) BeginAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzing {
		return ErrAnalysisInProgress
	}
	s.analyzing = true
	return nil
}

// EndAnalysis stores the sentiment report.
func (s *Session) EndAnalysis(rep sentiment.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzing = false
	s.sentiment = &rep
}

// Sentiment returns the last sentiment report, whether one is running.
func (s *Session) Sentiment() (*sentiment.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentiment, s.analyzing
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen), s.scanning || s.analyzing
}

// NewID returns a random 32-byte hex session token.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
