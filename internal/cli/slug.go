package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pscheid92/founderswall/internal/slug"
)

func newSlugCommand() *cobra.Command {
	var maxLen int

	cmd := &cobra.Command{
		Use:   "slug <title>...",
		Short: "Print the slug derived from a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := slug.Make(strings.Join(args, " "), maxLen)
			if s == "" {
				return errors.New("title contains no slug characters")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().IntVar(&maxLen, "max", 0, fmt.Sprintf("Maximum slug length, 0 for none (stories use %d)", slug.StoryMaxLen))
	return cmd
}

func newCaseIDCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caseid",
		Short: "Work with launch case IDs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "next [max]",
		Short: "Print the case ID that follows the highest issued one",
		Long: "Print the case ID that follows max, the highest case ID issued so far.\n" +
			"Without max the sequence starts at L001. A malformed max yields a random ID.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var maxExisting string
			if len(args) == 1 {
				maxExisting = args[0]
				if _, err := slug.ParseCaseID(maxExisting); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, drawing a random case ID\n", err)
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug.NextCaseID(maxExisting, nil))
			return err
		},
	})
	return cmd
}
