package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/wordquiz/internal/auth"
	"github.com/example/wordquiz/internal/database"
	"github.com/example/wordquiz/pkg/models"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user <username> <password>",
	Short: "Create an account (student by default)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		switch role {
		case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
		default:
			return errors.Errorf("unknown role %q", role)
		}

		_, _, db, err := setup(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		hash, err := auth.HashPassword(args[1])
		if err != nil {
			return err
		}
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		user := &models.User{
			Username:            args[0],
			PasswordHash:        hash,
			FirstName:           firstName,
			LastName:            lastName,
			Role:                role,
			NotificationEnabled: true,
			NotificationHour:    9,
		}
		if err := database.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.Errorf("username %q is taken", args[0])
			}
			return err
		}
		fmt.Printf("Created %s %q with id %d\n", user.Role, user.Username, user.ID)
		return nil
	},
}

func init() {
	createUserCmd.Flags().String("role", models.RoleStudent, "student, teacher or admin")
	createUserCmd.Flags().String("first-name", "", "First name")
	createUserCmd.Flags().String("last-name", "", "Last name")
}
