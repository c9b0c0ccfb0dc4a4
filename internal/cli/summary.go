package cli

import (
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/runnerr0/subplot/internal/bucket"
	"github.com/runnerr0/subplot/internal/record"
)

// summaryJSON is the JSON output structure for the summary command.
type summaryJSON struct {
	Forum   string       `json:"forum"`
	Year    int          `json:"year"`
	Mode    string       `json:"mode"`
	Buckets int          `json:"buckets"`
	Stats   statsJSON    `json:"stats"`
	Series  []bucketJSON `json:"series"`
}

type statsJSON struct {
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	Max    int     `json:"max"`
	MaxKey string  `json:"max_key"`
	Min    int     `json:"min"`
	MinKey string  `json:"min_key"`
}

type bucketJSON struct {
	Key   int    `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Execute implements the go-flags Commander interface for SummaryCommand.
func (c *SummaryCommand) Execute(args []string) error {
	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}
	return c.run(sess)
}

func (c *SummaryCommand) run(sess *session) error {
	name := c.Mode
	if name == "" {
		name = bucket.ModeDate.String()
	}
	mode, err := bucket.ParseMode(name)
	if err != nil {
		return err
	}

	target := sess.target
	input := record.Path(sess.dataDir, target.Forum, target.Year)
	rs, err := record.ReadFile(input)
	if err != nil {
		return err
	}
	slog.Debug("loaded row set", "path", input, "records", rs.Len())

	s, err := bucket.Bucketize(rs, mode, target.Year)
	if err != nil {
		return fmt.Errorf("bucketize %s by %s: %w", target, mode, err)
	}

	shown := s.Buckets
	if !c.All {
		shown = nonZero(s.Buckets)
	}

	if wantJSON(c.globals) {
		out := summaryJSON{
			Forum:   target.Forum,
			Year:    target.Year,
			Mode:    mode.String(),
			Buckets: s.Len(),
			Stats: statsJSON{
				Total:  s.Stats.Sum,
				Mean:   s.Stats.Mean,
				Max:    s.Stats.Max,
				MaxKey: s.Stats.MaxKey,
				Min:    s.Stats.Min,
				MinKey: s.Stats.MinKey,
			},
			Series: make([]bucketJSON, len(shown)),
		}
		for i, b := range shown {
			out.Series[i] = bucketJSON{Key: b.Key, Label: b.Label, Count: b.Count}
		}
		return printJSON(out)
	}

	fmt.Printf("Submissions in %s by %s (UTC)\n", target, mode)

	stats := newTable()
	stats.AppendHeader(table.Row{"Statistic", "Value", "Bucket"})
	stats.AppendRow(table.Row{"Total", formatNumber(int64(s.Stats.Sum)), ""})
	stats.AppendRow(table.Row{"Maximum", formatNumber(int64(s.Stats.Max)), s.Stats.MaxKey})
	stats.AppendRow(table.Row{"Minimum", formatNumber(int64(s.Stats.Min)), s.Stats.MinKey})
	stats.AppendRow(table.Row{"Average", fmt.Sprintf("%.2f", s.Stats.Mean), fmt.Sprintf("over %d buckets", s.Len())})
	stats.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	stats.Render()

	if len(shown) == 0 {
		return nil
	}

	series := newTable()
	series.AppendHeader(table.Row{"Key", "Bucket", "Count"})
	for _, b := range shown {
		series.AppendRow(table.Row{b.Key, b.Label, formatNumber(int64(b.Count))})
	}
	series.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	series.Render()
	return nil
}

func nonZero(buckets []bucket.Bucket) []bucket.Bucket {
	out := make([]bucket.Bucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}
