package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/repository/gormdb"
	"github.com/mamadbah2/herdbook/internal/service/farms"
)

func getFarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farm",
		Short: "Registers farms and issues their API tokens",
	}
	cmd.AddCommand(getFarmCreateCmd(), getFarmTokenCmd(), getFarmListCmd())
	return cmd
}

func farmService(store *gormdb.Store) *farms.Service {
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer)
	return farms.NewService(store, tokens, baseLogger.Named("svc.farms"))
}

func getFarmCreateCmd() *cobra.Command {
	var (
		name  string
		phone string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Registers a farm and prints its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			reg, err := farmService(store).Register(cmd.Context(), name, phone, ttl)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "farm %d %q registered (breeder %d)\n", reg.Farm.ID, reg.Farm.Name, reg.Breeder.ID)
			fmt.Fprintf(out, "token: %s\n", reg.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "farm name, unique regardless of case")
	cmd.Flags().StringVar(&phone, "phone", "", "WhatsApp number receiving the weekly report")
	cmd.Flags().DurationVar(&ttl, "ttl", farms.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func getFarmTokenCmd() *cobra.Command {
	var (
		id  uint
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issues a fresh token for an existing farm",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.GetFarm(cmd.Context(), id); err != nil {
				return fmt.Errorf("farm %d: %w", id, err)
			}
			token, err := farmService(store).IssueToken(id, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", token)
			return nil
		},
	}
	cmd.Flags().UintVar(&id, "id", 0, "farm id")
	cmd.Flags().DurationVar(&ttl, "ttl", farms.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func getFarmListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists registered farms",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := farmService(store).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", f.ID, f.Name, f.Phone)
			}
			return nil
		},
	}
}
