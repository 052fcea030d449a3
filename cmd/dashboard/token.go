package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/supplychain-dashboard/pkg/config"
	"github.com/jhoicas/supplychain-dashboard/pkg/jwt"
)

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET vacío: la autenticación está deshabilitada")
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, operatorFlag, roleFlag, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
