package cli

import (
	"github.com/harun/walet/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a session store",
	Long: `Initialize the configured session store: create it if needed, load
or generate the credential bundle, and persist the bundle. Running init on an
existing session is safe and leaves it unchanged.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	st, err := openSessionStore(false)
	if err != nil {
		return err
	}
	defer st.Close()

	creds, err := st.InitCreds(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Session initialized\n")
	if st.Backend() == config.BackendSQLite {
		cmd.Printf("  Database:        %s\n", st.Where())
	} else {
		cmd.Printf("  Directory:       %s\n", st.Where())
	}
	cmd.Printf("  Bundle:          %s\n", st.BundleLabel())
	cmd.Printf("  Registration ID: %d\n", creds.RegistrationID)
	cmd.Printf("  Registered:      %t\n", creds.Registered)

	return nil
}
