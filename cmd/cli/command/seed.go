package command

import (
	"fmt"

	"yatube/internal/seed"

	"github.com/spf13/cobra"
)

var seedOpts seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake data",
	Long: `Create fake authors, groups, posts, comments and follows for development.
Every generated account gets the same password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDB()

		result, err := seed.New(db, appLogger).Run(cmd.Context(), seedOpts)
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, success("✓ Database seeded"))
		fmt.Fprintf(out, "Users: %d | Groups: %d | Posts: %d | Comments: %d | Follows: %d\n",
			result.Users, result.Groups, result.Posts, result.Comments, result.Follows)
		fmt.Fprintf(out, "Password of every account: %s\n", seedOpts.Password)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.Users, "users", 10, "number of authors")
	seedCmd.Flags().IntVar(&seedOpts.Groups, "groups", 3, "number of groups")
	seedCmd.Flags().IntVar(&seedOpts.PostsPerUser, "posts", 5, "posts per author")
	seedCmd.Flags().StringVar(&seedOpts.Password, "password", "yatube-dev-pass", "password of the generated accounts")
	seedCmd.Flags().Uint64Var(&seedOpts.Seed, "seed", 0, "random seed, 0 for a random run")
}
