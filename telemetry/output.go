package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/spout/config"
)

// csvLog is an append-only CSV file whose header goes out with the first row.
type csvLog struct {
	f      *os.File
	header bool
}

func (l *csvLog) append(rows any) error {
	if l.header {
		return gocsv.MarshalWithoutHeaders(rows, l.f)
	}
	l.header = true
	return gocsv.Marshal(rows, l.f)
}

// OutputManager writes per-run CSV logs, the obstacle table and the
// effective config into one directory. A nil manager discards everything.
type OutputManager struct {
	dir       string
	telemetry csvLog
	perf      csvLog
	bookmarks csvLog
}

// NewOutputManager creates dir and opens the run logs inside it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	logs := []struct {
		name string
		log  *csvLog
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
	}
	for _, l := range logs {
		f, err := os.Create(filepath.Join(dir, l.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", l.name, err)
		}
		l.log.f = f
	}
	return om, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.append([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd uint64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.append([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.append([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// ObstacleRecord describes one configured obstacle and whether the pool
// accepted it.
type ObstacleRecord struct {
	Index    int     `csv:"index"`
	Name     string  `csv:"name"`
	Area     float64 `csv:"area"`
	NormalX  float64 `csv:"normal_x"`
	NormalY  float64 `csv:"normal_y"`
	NormalZ  float64 `csv:"normal_z"`
	Accepted bool    `csv:"accepted"`
	Error    string  `csv:"error"`
}

// WriteObstacles writes the obstacle table to obstacles.csv in one shot.
func (om *OutputManager) WriteObstacles(records []ObstacleRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, "obstacles.csv"))
	if err != nil {
		return fmt.Errorf("creating obstacles.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing obstacles: %w", err)
	}
	return nil
}

// Close closes the run logs.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, l := range []*csvLog{&om.telemetry, &om.perf, &om.bookmarks} {
		if l.f != nil {
			errs = append(errs, l.f.Close())
			l.f = nil
		}
	}
	return errors.Join(errs...)
}
