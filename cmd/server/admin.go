package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmynk/poinku/internal/app"
	"github.com/mmynk/poinku/internal/auth"
	"github.com/mmynk/poinku/internal/models"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, logger, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			logger.Info("Migrations applied")
			return nil
		},
	}
}

func newSetDivisorCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-divisor <amount>",
		Short: "Set the spend amount that earns one point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			divisor, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid divisor %q: %w", args[0], err)
			}

			cfg, store, logger, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := app.New(cfg, store, logger).Policy.SetDivisor(cmd.Context(), divisor); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversion divisor set to %d\n", divisor)
			return nil
		},
	}
}

func newReconcileCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <member-id>",
		Short: "Compare a member's cached balance with the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, logger, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := app.New(cfg, store, logger).Ledger.Reconcile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Member:     %s\n", rec.MemberID)
			fmt.Fprintf(out, "Cached:     %d\n", rec.Cached)
			fmt.Fprintf(out, "Journal:    %d (%d entries, +%d / -%d)\n", rec.Journal, rec.Entries, rec.TotalEarned, rec.TotalRedeemed)
			fmt.Fprintf(out, "Consistent: %t\n", rec.Consistent)
			if !rec.Consistent {
				return fmt.Errorf("balance mismatch for member %s", rec.MemberID)
			}
			return nil
		},
	}
}

func newCreateStaffCmd(configPath *string) *cobra.Command {
	var in auth.StaffInput
	var role string

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff or admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, logger, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			a := app.New(cfg, store, logger)
			in.Role = models.Role(role)
			staff, err := a.Staff.Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if staff.StoreID == "" {
				fmt.Fprintf(out, "Created %s %s (%s)\n", staff.Role, staff.Username, staff.ID)
				return nil
			}
			st, err := a.Directory.GetStore(cmd.Context(), staff.StoreID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s %s (%s) at %s [%s]\n", staff.Role, staff.Username, staff.ID, st.Name, st.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStaff), "admin or staff")
	cmd.Flags().StringVar(&in.StoreID, "store", "", "store ID the account works at")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}
