package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/clockit/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Sessions   []jsonStamp `json:"sessions"`
}

type jsonStamp struct {
	ID           int64   `json:"id"`
	Client       string  `json:"client"`
	Service      string  `json:"service"`
	Rate         float64 `json:"rate"`
	ClockIn      string  `json:"clock_in"`
	ClockOut     string  `json:"clock_out,omitempty"`
	Hours        float64 `json:"hours"`
	EarnedIncome float64 `json:"earned_income"`
	Description  string  `json:"description,omitempty"`
}

func ToJSON(sessions []store.WorkSession, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, ws := range sessions {
		export.Sessions = append(export.Sessions, jsonStamp{
			ID:           ws.TimeStamp.ID,
			Client:       ws.ClientName,
			Service:      ws.ServiceName,
			Rate:         ws.Rate,
			ClockIn:      formatMillis(ws.ClockIn),
			ClockOut:     formatMillis(ws.ClockOut),
			Hours:        ws.HoursWorked(),
			EarnedIncome: ws.EarnedIncome(),
			Description:  ws.Description,
		})
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
