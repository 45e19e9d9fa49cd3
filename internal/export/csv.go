package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/clockit/internal/invoice"
	"github.com/sadopc/clockit/internal/store"
)

// ToCSV writes closed work sessions as a flat timesheet. Earned income is
// priced at each service's current rate, same as everywhere else.
func ToCSV(sessions []store.WorkSession, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Client", "Service", "Clock In", "Clock Out", "Hours", "Earned Income", "Description"}); err != nil {
		return err
	}

	for _, ws := range sessions {
		row := []string{
			fmt.Sprintf("%d", ws.TimeStamp.ID),
			ws.ClientName,
			ws.ServiceName,
			formatMillis(ws.ClockIn),
			formatMillis(ws.ClockOut),
			fmt.Sprintf("%.2f", ws.HoursWorked()),
			invoice.FormatAmount(ws.EarnedIncome()),
			ws.Description,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatMillis(millis int64) string {
	if millis == store.OpenClockOut {
		return ""
	}
	return time.UnixMilli(millis).Local().Format(time.RFC3339)
}
