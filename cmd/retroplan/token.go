package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stride/backend/config"
	"stride/backend/pkg/jwt"
)

var (
	tokenOwner  string
	tokenConfig string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for an owner (local development)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(tokenConfig)
		if err != nil {
			return err
		}
		token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(tokenOwner)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOwner, "owner", "", "owner id carried by the token")
	tokenCmd.Flags().StringVar(&tokenConfig, "config", "", "config file (defaults to ./config/config.yaml)")
	_ = tokenCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(tokenCmd)
}
