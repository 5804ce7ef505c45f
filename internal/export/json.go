package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/myway/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID             int64  `json:"id"`
	Module         string `json:"module"`
	ModuleID       *int64 `json:"module_id,omitempty"`
	Todo           string `json:"todo,omitempty"`
	TodoID         *int64 `json:"todo_id,omitempty"`
	Type           string `json:"session_type"`
	Status         string `json:"status"`
	StartedAt      string `json:"started_at"`
	CompletedAt    string `json:"completed_at,omitempty"`
	PlannedSeconds int64  `json:"planned_seconds"`
	ActualSeconds  *int64 `json:"actual_seconds,omitempty"`
	Actual         string `json:"actual,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func ToJSON(sessions []store.Session, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   make([]jsonSession, 0, len(sessions)),
	}

	for _, s := range sessions {
		js := jsonSession{
			ID:             s.ID,
			Module:         moduleName(s),
			ModuleID:       s.ModuleID,
			Todo:           s.TodoTitle,
			TodoID:         s.TodoID,
			Type:           s.Type,
			Status:         s.Status,
			StartedAt:      s.StartedAt.Local().Format(time.RFC3339),
			PlannedSeconds: s.PlannedDuration,
			ActualSeconds:  s.ActualDuration,
			Notes:          s.Notes,
		}
		if s.CompletedAt != nil {
			js.CompletedAt = s.CompletedAt.Local().Format(time.RFC3339)
		}
		if s.ActualDuration != nil {
			js.Actual = formatDuration(*s.ActualDuration)
		}
		export.Sessions = append(export.Sessions, js)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
