// Package export writes pomodoro session history to CSV and JSON files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/myway/internal/store"
)

var csvHeader = []string{
	"ID", "Module", "Todo", "Type", "Status", "Started", "Completed",
	"Planned (s)", "Actual (s)", "Actual", "Notes",
}

func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		completed := ""
		if s.CompletedAt != nil {
			completed = s.CompletedAt.Local().Format(time.RFC3339)
		}
		actual, actualStr := "", ""
		if s.ActualDuration != nil {
			actual = strconv.FormatInt(*s.ActualDuration, 10)
			actualStr = formatDuration(*s.ActualDuration)
		}

		row := []string{
			strconv.FormatInt(s.ID, 10),
			moduleName(s),
			s.TodoTitle,
			s.Type,
			s.Status,
			s.StartedAt.Local().Format(time.RFC3339),
			completed,
			strconv.FormatInt(s.PlannedDuration, 10),
			actual,
			actualStr,
			s.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// moduleName labels sessions whose module was never set or has since been
// deleted.
func moduleName(s store.Session) string {
	switch {
	case s.ModuleName != "":
		return s.ModuleName
	case s.ModuleID == nil:
		return "Unassigned"
	}
	return "Unknown"
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FileName builds a timestamped export name such as
// myway-sessions-20260114-120000.csv.
func FileName(now time.Time, ext string) string {
	return "myway-sessions-" + now.Format("20060102-150405") + "." + ext
}
