package errs

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
)

// reportRecent caps how many records a report embeds.
const reportRecent = 10

// Report is a point-in-time export of pipeline state for operators and
// telemetry sinks.
type Report struct {
	ID          string     `json:"id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Statistics  Statistics `json:"statistics"`
	Recent      []Record   `json:"recent"`
}

// ExportReport snapshots statistics plus the most recent records.
func (p *Pipeline) ExportReport() Report {
	return Report{
		ID:          uuid.NewString(),
		GeneratedAt: p.cfg.Clock.Now(),
		Statistics:  p.Statistics(),
		Recent:      p.History(reportRecent),
	}
}

// String renders the report as aligned text.
func (r Report) String() string {
	var sb strings.Builder

	w := tabwriter.NewWriter(&sb, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintf(w, "report\t%s\n", r.ID)
	_, _ = fmt.Fprintf(w, "generated\t%s\n", r.GeneratedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "total\t%d\n", r.Statistics.Total)
	_, _ = fmt.Fprintf(w, "last hour\t%d\n", r.Statistics.LastHour)
	_, _ = fmt.Fprintf(w, "today\t%d\n", r.Statistics.Today)
	if r.Statistics.MostFrequent != "" {
		_, _ = fmt.Fprintf(w, "most frequent\t%s (%d)\n",
			r.Statistics.MostFrequent, r.Statistics.ByKind[r.Statistics.MostFrequent])
	}
	_ = w.Flush()

	if len(r.Recent) > 0 {
		sb.WriteString("\n")
		w = tabwriter.NewWriter(&sb, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "TIME\tKIND\tSEVERITY\tCONTEXT\tMESSAGE")
		for _, rec := range r.Recent {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rec.Time.Format(time.RFC3339), rec.Kind, rec.Severity, rec.Context, rec.Message)
		}
		_ = w.Flush()
	}

	return sb.String()
}
