package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/users"
	"datacatalog/internal/infrastructure/storage/postgres/auth_repo"
	"datacatalog/internal/seed"
)

var (
	createEmail    string
	createPassword string
	createStdin    bool
	createName     string
	createRole     string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Example: `  catalogctl users create --email ana@example.com --password 'S3cret-pass' --role cami
  echo 'S3cret-pass' | catalogctl users create --email ana@example.com --stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := security.ParseRole(createRole)
		if err != nil {
			return err
		}

		password := createPassword
		if createStdin {
			if password != "" {
				return errors.New("--password and --stdin are mutually exclusive")
			}
			password, err = readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}
		if password == "" {
			return errors.New("--password or --stdin is required")
		}

		ctx := cmd.Context()
		pool, txManager, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := users.NewService(auth_repo.NewUserRepo(txManager), nil, 0)
		user, err := svc.Create(ctx, seed.Operator(), users.CreateInput{
			Email:    createEmail,
			Password: password,
			Name:     createName,
			Role:     role,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", user.Email, user.Role, user.ID)
		return nil
	},
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	f := usersCreateCmd.Flags()
	f.StringVar(&createEmail, "email", "", "Email address (required)")
	f.StringVar(&createPassword, "password", "", "Password")
	f.BoolVar(&createStdin, "stdin", false, "Read the password from the first line of stdin")
	f.StringVar(&createName, "name", "", "Display name (defaults to the email local part)")
	f.StringVar(&createRole, "role", "user", "Role: user, cami (cami_yaku) or admin")
	_ = usersCreateCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersCreateCmd)
}
