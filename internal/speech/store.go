package speech

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var audioEvictions = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "news_audio_evictions_total",
	Help: "Audio files removed from the static-assets directory after their TTL",
})

func init() {
	prometheus.MustRegister(audioEvictions)
}

// Store owns the static-assets directory that generated audio is served from.
type Store struct {
	dir    string
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewStore(dir string, ttl time.Duration, logger *zap.SugaredLogger) *Store {
	return &Store{dir: dir, ttl: ttl, logger: logger}
}

// Dir is the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// FileName is the audio file name for the n-th (1-based) article of a request.
func FileName(requestID string, n int) string {
	return fmt.Sprintf("news_summary_%s_%d.mp3", requestID, n)
}

// Save writes audio as name, creating the directory if needed, and returns its path.
func (s *Store) Save(name string, audio []byte) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid audio file name %q", name)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create static dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	return path, nil
}

// Sweep removes .mp3 files last modified more than the TTL before now.
// It returns how many files were removed. A non-positive TTL disables eviction.
func (s *Store) Sweep(now time.Time) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list static dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp3") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) <= s.ttl {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warnw("Failed to evict audio file", "file", e.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		audioEvictions.Add(float64(removed))
		s.logger.Infow("Evicted expired audio", "removed", removed, "ttl", s.ttl.String())
	}

	return removed, nil
}

// minJanitorInterval bounds how often the static directory is listed.
const minJanitorInterval = time.Second

// JanitorInterval is the sweep period for a TTL: a quarter of it, at least one second.
func JanitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, minJanitorInterval)
}

// Janitor sweeps the store every interval until stop is closed. Intervals below
// one second are raised to one second.
func (s *Store) Janitor(interval time.Duration, stop <-chan struct{}) {
	interval = max(interval, minJanitorInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if _, err := s.Sweep(now); err != nil {
				s.logger.Warnw("Audio sweep failed", "error", err)
			}
		}
	}
}
