package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ownerFlags struct {
	email    string
	password string
	name     string
}

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage owner accounts",
}

var ownerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an owner account",
	RunE:  runOwnerCreate,
}

func init() {
	f := ownerCreateCmd.Flags()
	f.StringVar(&ownerFlags.email, "email", "", "Owner email (required)")
	f.StringVar(&ownerFlags.password, "password", "", "Owner password (required)")
	f.StringVar(&ownerFlags.name, "name", "", "Display name")
	_ = ownerCreateCmd.MarkFlagRequired("email")
	_ = ownerCreateCmd.MarkFlagRequired("password")

	ownerCmd.AddCommand(ownerCreateCmd)
}

func runOwnerCreate(cmd *cobra.Command, _ []string) error {
	return withBackends(cmd, func(ctx context.Context, b *backends) error {
		if b.users == nil {
			return errors.New("owner accounts need MONGODB_URI")
		}
		u, err := b.users.Register(ctx, ownerFlags.email, ownerFlags.password, ownerFlags.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created owner %s (%s)\n", u.Email, u.ID)
		return nil
	})
}
