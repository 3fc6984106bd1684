package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/database"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	userEmail    string
	userPassword string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a user account",
	Long: `Provision a user account. The API has no sign-up endpoint; accounts are
created here.

Examples:
  minicrm user create --email admin@example.com --password s3cret --role ADMIN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close(db)

		user, err := createUser(cmd.Context(), repository.NewStore(db), userEmail, userPassword, userRole)
		if err != nil {
			return err
		}
		log.Info("User created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(model.RoleMember), "ADMIN or MEMBER")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
}

type newUser struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

// createUser validates the input, hashes the password and stores the user.
func createUser(ctx context.Context, store *repository.Store, email, password, role string) (*model.User, error) {
	in := newUser{Email: email, Password: password, Role: role}
	if err := validation.New().Validate(&in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: string(hash), Role: model.Role(role)}
	if err := store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
