package command

import (
	"errors"
	"fmt"
	"strings"

	"yatube/internal/http-api/repository"
	"yatube/internal/http-api/service"

	"github.com/spf13/cobra"
)

var (
	groupTitle       string
	groupDescription string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Group management commands",
	Long:  `Manage groups: list, create and delete the communities posts can belong to`,
}

var listGroupsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, closeDB, err := groupService()
		if err != nil {
			return err
		}
		defer closeDB()

		list, err := groups.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No groups found.")
			return nil
		}

		fmt.Fprintln(out, heading(fmt.Sprintf("Groups (%d total):", len(list))))
		for _, g := range list {
			fmt.Fprintf(out, "ID: %d | Slug: %s | Title: %s\n", g.ID, g.Slug, g.Title)
		}
		return nil
	},
}

var createGroupCmd = &cobra.Command{
	Use:   "create [slug]",
	Short: "Create a new group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, closeDB, err := groupService()
		if err != nil {
			return err
		}
		defer closeDB()

		title := groupTitle
		if strings.TrimSpace(title) == "" {
			title = args[0]
		}

		group, err := groups.Create(cmd.Context(), title, args[0], groupDescription)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, success("✓ Group created successfully!"))
		fmt.Fprintf(out, "ID: %d\n", group.ID)
		fmt.Fprintf(out, "Title: %s\n", group.Title)
		fmt.Fprintf(out, "URL: /group/%s/\n", group.Slug)
		return nil
	},
}

var deleteGroupCmd = &cobra.Command{
	Use:   "delete [slug]",
	Short: "Delete a group; its posts stay without a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, closeDB, err := groupService()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := groups.Delete(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, service.ErrGroupNotFound) {
				return fmt.Errorf("group %q does not exist", args[0])
			}
			return fmt.Errorf("failed to delete group: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("✓ Group %s deleted", args[0])))
		return nil
	},
}

func groupService() (service.GroupService, func(), error) {
	db, closeDB, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	return service.NewGroupService(repository.NewGroupRepository(db)), closeDB, nil
}

func init() {
	createGroupCmd.Flags().StringVar(&groupTitle, "title", "", "group title (defaults to the slug)")
	createGroupCmd.Flags().StringVar(&groupDescription, "description", "", "group description")

	// Add subcommands
	groupCmd.AddCommand(listGroupsCmd)
	groupCmd.AddCommand(createGroupCmd)
	groupCmd.AddCommand(deleteGroupCmd)
}
