package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/pkg/jwt"
)

var (
	tokenEmployee string
	tokenRole     string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "为指定员工签发 Access Token（联调用）",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmployee, "employee", "", "员工 ID（UUID）")
	tokenCmd.Flags().StringVar(&tokenRole, "role", model.RoleEmployee, "角色: employee, manager, admin")
	tokenCmd.MarkFlagRequired("employee")
}

func runToken(cmd *cobra.Command, args []string) error {
	if _, err := uuid.Parse(tokenEmployee); err != nil {
		return fmt.Errorf("--employee 必须为 UUID: %w", err)
	}
	switch tokenRole {
	case model.RoleEmployee, model.RoleManager, model.RoleAdmin:
	default:
		return fmt.Errorf("未知角色: %s", tokenRole)
	}

	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(tokenEmployee, tokenRole)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
