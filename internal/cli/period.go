package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pscheid92/founderswall/internal/period"
)

type periodOutput struct {
	Key              string    `json:"key"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	LengthHours      int       `json:"length_hours"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	NextStart        time.Time `json:"next_start"`
}

func newPeriodCommand(clock clockwork.Clock) *cobra.Command {
	var (
		at     string
		format string
	)

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the launch period containing an instant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := clock.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be an RFC 3339 timestamp: %w", err)
				}
				now = parsed
			}

			w := period.Current(now)
			out := periodOutput{
				Key:              w.Key(),
				Start:            w.Start,
				End:              w.End,
				LengthHours:      int(w.Length().Hours()),
				RemainingSeconds: int64(w.Remaining(now).Seconds()),
				NextStart:        w.Next().Start,
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			case "text":
				_, err := fmt.Fprintf(cmd.OutOrStdout(),
					"period    %s\nstart     %s\nend       %s\nlength    %dh\nremaining %s\n",
					out.Key,
					out.Start.Format(time.RFC3339),
					out.End.Format(time.RFC3339),
					out.LengthHours,
					w.Remaining(now).Truncate(time.Second),
				)
				return err
			default:
				return fmt.Errorf("unknown format %q (want json or text)", format)
			}
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Instant to evaluate (RFC 3339, default now)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: json or text")
	return cmd
}
