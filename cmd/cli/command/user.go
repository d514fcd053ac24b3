package command

import (
	"errors"
	"fmt"
	"time"

	"yatube/internal/http-api/repository"
	"yatube/internal/http-api/server"
	"yatube/internal/http-api/service"
	"yatube/internal/mail"
	"yatube/internal/middleware/auth"

	"github.com/spf13/cobra"
)

var newUser service.SignupInput

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User account commands",
}

var createUserCmd = &cobra.Command{
	Use:   "create [username]",
	Short: "Create a user account",
	Long:  `Create an account the same way the signup form does; the password policy applies.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDB()

		authService := service.NewAuthService(
			repository.NewUserRepository(db),
			repository.NewPasswordResetRepository(db),
			auth.NewSessionManager(appConfig.SessionSecret, appConfig.SessionTTL),
			mail.NewLogMailer(appLogger, server.DefaultFromEmail),
			service.AuthOptions{ResetTTL: appConfig.PasswordResetTTL, SiteURL: appConfig.SiteURL},
			appLogger,
		)

		input := newUser
		input.Username = args[0]
		user, err := authService.Register(cmd.Context(), input)
		if err != nil {
			var pwErr *service.PasswordError
			switch {
			case errors.Is(err, service.ErrNameInUse):
				return fmt.Errorf("username %q is taken", input.Username)
			case errors.As(err, &pwErr):
				return fmt.Errorf("password rejected: %s", pwErr.Reason)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, success("✓ User created successfully!"))
		fmt.Fprintf(out, "ID: %s\n", user.ID)
		fmt.Fprintf(out, "Username: %s\n", user.Username)
		return nil
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDB()

		users, err := repository.NewUserRepository(db).List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No users found.")
			return nil
		}

		fmt.Fprintln(out, heading(fmt.Sprintf("Users (%d total):", len(users))))
		for _, u := range users {
			lastLogin := "never"
			if u.LastLogin != nil {
				lastLogin = u.LastLogin.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(out, "%s | %s | %s | last login: %s\n", u.Username, u.FullName(), u.Email, lastLogin)
		}
		return nil
	},
}

var purgeTokensCmd = &cobra.Command{
	Use:   "purge-reset-tokens",
	Short: "Delete used and expired password reset tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDB()

		n, err := repository.NewPasswordResetRepository(db).DeleteExpired(cmd.Context(), time.Now())
		if err != nil {
			return fmt.Errorf("failed to purge tokens: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("✓ %d reset tokens removed", n)))
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&newUser.Email, "email", "", "email address")
	createUserCmd.Flags().StringVar(&newUser.Password, "password", "", "password")
	createUserCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "first name")
	createUserCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "last name")
	_ = createUserCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createUserCmd)
	userCmd.AddCommand(listUsersCmd)
	userCmd.AddCommand(purgeTokensCmd)
}
