package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harun/walet/internal/observability"
	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Browse and edit session records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list <category>",
	Short: "List record ids in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsList,
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <category> <id>",
	Short: "Print one record as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordsShow,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <category> <id>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordsDelete,
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	category := strings.TrimSpace(args[0])
	st, err := openSessionStore(true)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := st.IDs(cmd.Context(), category)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		cmd.Printf("No %s records.\n", category)
		return nil
	}

	cmd.Printf("%s records:\n", category)
	for _, id := range ids {
		cmd.Printf("- %s\n", id)
	}
	return nil
}

func runRecordsShow(cmd *cobra.Command, args []string) error {
	category := strings.TrimSpace(args[0])
	id := strings.TrimSpace(args[1])
	st, err := openSessionStore(true)
	if err != nil {
		return err
	}
	defer st.Close()

	value := st.Get(cmd.Context(), category, []string{id})[id]
	if value == nil {
		return fmt.Errorf("record not found: %s %s", category, id)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	cmd.Println(string(data))
	return nil
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	category := strings.TrimSpace(args[0])
	id := strings.TrimSpace(args[1])
	st, err := openSessionStore(true)
	if err != nil {
		return err
	}
	defer st.Close()

	if st.Get(cmd.Context(), category, []string{id})[id] == nil {
		return fmt.Errorf("record not found: %s %s", category, id)
	}

	updates := map[string]map[string]interface{}{
		category: {id: nil},
	}
	if err := st.Set(cmd.Context(), updates); err != nil {
		observability.RecordMutationAudit(cmd.Context(), "record_deleted", st.Where(), "failure", map[string]interface{}{
			"category": category,
			"id":       id,
		})
		return err
	}

	observability.RecordMutationAudit(cmd.Context(), "record_deleted", st.Where(), "success", map[string]interface{}{
		"category": category,
		"id":       id,
	})
	cmd.Printf("Deleted %s %s.\n", category, id)
	return nil
}
