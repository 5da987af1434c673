package cli

import (
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a session store",
	Long: `Summarize the configured session store: credential bundle fields
that are safe to display plus record counts per category. Key material is
never printed.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	st, err := openSessionStore(true)
	if err != nil {
		return err
	}
	defer st.Close()

	creds, err := st.Creds(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Session: %s\n", st.Where())
	cmd.Printf("  Bundle:               %s\n", st.BundleLabel())
	cmd.Printf("  Registered:           %t\n", creds.Registered)
	cmd.Printf("  Registration ID:      %d\n", creds.RegistrationID)
	cmd.Printf("  Next pre-key ID:      %d\n", creds.NextPreKeyID)
	cmd.Printf("  Account sync counter: %d\n", creds.AccountSyncCounter)
	if creds.LastAccountSyncTimestamp > 0 {
		cmd.Printf("  Last account sync:    %s\n", time.Unix(creds.LastAccountSyncTimestamp, 0).Format(time.RFC3339))
	}

	counts, total, err := st.RecordCounts(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("\nRecords: %d\n", total)
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		cmd.Printf("  %-24s %d\n", category, counts[category])
	}

	return nil
}
