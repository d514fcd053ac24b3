package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDB()

		fmt.Fprintln(cmd.OutOrStdout(), success("✓ Database schema is up to date"))
		return nil
	},
}
