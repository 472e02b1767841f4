package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"datacatalog/internal/infrastructure/storage/postgres/auth_repo"
	"datacatalog/internal/infrastructure/storage/postgres/product_repo"
	"datacatalog/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo users and the default tags on an empty database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, txManager, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		seeder := seed.New(
			auth_repo.NewUserRepo(txManager),
			product_repo.NewTagRepo(txManager),
			txManager,
			0,
		)
		res, err := seeder.Run(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Skipped {
			fmt.Fprintln(out, "users already exist, nothing seeded")
			return nil
		}
		for _, u := range res.Users {
			fmt.Fprintf(out, "user  %-24s %s\n", u.Email, u.Role)
		}
		fmt.Fprintf(out, "tags  %d\n", len(res.Tags))
		fmt.Fprintf(out, "password for seeded users: %s\n", seed.DefaultPassword)
		return nil
	},
}
