package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
)

// Timing is one prediction latency measurement.
type Timing struct {
	At         time.Time
	FileTypeID string
	TenantID   string
	Duration   time.Duration
}

// TimingLog appends prediction timings to a CSV file, writing the header
// when the file is new.
type TimingLog struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewTimingLog returns a log writing to path on fs.
func NewTimingLog(fs afero.Fs, path string) *TimingLog {
	return &TimingLog{fs: fs, path: path}
}

// Record appends t.
func (l *TimingLog) Record(t Timing) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	exists, err := afero.Exists(l.fs, l.path)
	if err != nil {
		return errors.WrapIO("stat", l.path, err)
	}
	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("open", l.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if !exists {
		if err := cw.Write([]string{"Timestamp", "FileTypeID", "TenantID", "PredictionTimeSeconds"}); err != nil {
			return errors.WrapIO("write", l.path, err)
		}
	}
	rec := []string{
		t.At.Format(constants.TimeFormatLog),
		t.FileTypeID,
		t.TenantID,
		strconv.FormatFloat(t.Duration.Seconds(), 'f', 4, 64),
	}
	if err := cw.Write(rec); err != nil {
		return errors.WrapIO("write", l.path, err)
	}
	cw.Flush()
	return errors.WrapIO("write", l.path, cw.Error())
}

func itoa(n int) string { return strconv.Itoa(n) }
