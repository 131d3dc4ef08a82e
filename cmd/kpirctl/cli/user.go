package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/kpir/internal/platform/db"
	"github.com/odyssey-erp/kpir/internal/users"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	var (
		req       users.CreateRequest
		companyID int64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account, e.g. the first system administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN, db.PoolOptions{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()
			if companyID > 0 {
				req.CompanyID = &companyID
			}
			user, err := users.NewService(users.NewRepository(pool), logger()).CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user id=%d email=%s role=%s\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
	create.Flags().StringVar(&req.Email, "email", "", "login email")
	create.Flags().StringVar(&req.Password, "password", "", "initial password (min 8 characters)")
	create.Flags().StringVar(&req.Role, "role", "EMPLOYEE", "SYSTEM_ADMIN, MANAGER or EMPLOYEE")
	create.Flags().Int64Var(&companyID, "company", 0, "company id for company users")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)
	return cmd
}
