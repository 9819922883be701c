package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// logFilePrefix is shared by generated log files and the retention sweep.
const logFilePrefix = "flowops-"

// LogConfig holds configuration for structured log output.
type LogConfig struct {
	Format        string // "human" (default), "text" or "json"
	Level         string // "DEBUG", "INFO" (default), "WARN", "ERROR"
	Output        string // Path, "-" for stderr (default), "auto" for a generated file, "none" to disable
	Dir           string // Log directory for generated and relative paths
	RetentionDays int    // Days to retain generated log files; 0 keeps everything
}

// LogFile manages the lifetime of the log sink selected by LogConfig.
type LogFile struct {
	Path   string // empty unless logging to a file
	file   afero.File
	writer io.Writer
}

// OpenLogFile resolves cfg.Output on the OS filesystem.
func OpenLogFile(cfg *LogConfig) (*LogFile, error) {
	return OpenLogFileFs(afero.NewOsFs(), cfg, time.Now())
}

// OpenLogFileFs resolves cfg.Output on fs:
//   - "" or "-": stderr
//   - "none":    io.Discard
//   - "auto":    <Dir>/flowops-YYYYMMDD-HHMMSS-sss.log, named after now
//   - a path:    absolute, or relative to Dir; appended to
func OpenLogFileFs(fs afero.Fs, cfg *LogConfig, now time.Time) (*LogFile, error) {
	lf := &LogFile{}
	switch out := strings.TrimSpace(cfg.Output); strings.ToLower(out) {
	case "", "-":
		lf.writer = os.Stderr
		return lf, nil
	case "none":
		lf.writer = io.Discard
		return lf, nil
	case "auto":
		lf.Path = filepath.Join(cfg.Dir, GenerateLogFilename(now.UTC()))
	default:
		if filepath.IsAbs(out) {
			lf.Path = out
		} else {
			lf.Path = filepath.Join(cfg.Dir, out)
		}
	}

	dir := filepath.Dir(lf.Path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
	}
	f, err := fs.OpenFile(lf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", lf.Path, err)
	}
	lf.file = f
	lf.writer = f
	return lf, nil
}

// Writer returns the io.Writer for log output.
func (lf *LogFile) Writer() io.Writer {
	return lf.writer
}

// Close closes the log file if one was opened.
func (lf *LogFile) Close() error {
	if lf.file != nil {
		return lf.file.Close()
	}
	return nil
}

// GenerateLogFilename returns flowops-YYYYMMDD-HHMMSS-sss.log for t.
func GenerateLogFilename(t time.Time) string {
	return fmt.Sprintf("%s%s-%03d.log", logFilePrefix, t.Format("20060102-150405"), t.Nanosecond()/1_000_000)
}

// CleanupOldLogFiles removes generated log files in dir last modified before now-retentionDays.
func CleanupOldLogFiles(fs afero.Fs, dir string, retentionDays int, now time.Time) (removed int, err error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading log directory %q: %w", dir, err)
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	for _, info := range entries {
		name := info.Name()
		if info.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		if info.ModTime().Before(cutoff) {
			// best effort; a file we cannot remove is retried on the next sweep
			if fs.Remove(filepath.Join(dir, name)) == nil {
				removed++
			}
		}
	}
	return removed, nil
}
