package cmd

import (
	"fmt"

	internalApp "github.com/haierkeys/flownote-service/internal/app"
	pkgapp "github.com/haierkeys/flownote-service/pkg/app"

	"github.com/spf13/cobra"
)

type tokenFlags struct {
	config   string
	uid      int64
	nickname string
}

func init() {
	flags := new(tokenFlags)

	var tokenCommand = &cobra.Command{
		Use:   "token --uid 1 [-c config_file]",
		Short: "Mint an identity token for development // 生成开发用身份令牌",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.uid <= 0 {
				return fmt.Errorf("--uid must be positive")
			}
			if flags.config == "" {
				flags.config = findConfig()
			}
			if flags.config == "" {
				return fmt.Errorf("config file not found")
			}

			cfg, _, err := internalApp.LoadConfig(flags.config)
			if err != nil {
				return err
			}
			tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{
				SecretKey: cfg.Security.AuthTokenKey,
				Expiry:    cfg.GetTokenExpiry(),
			})
			token, err := tm.Generate(flags.uid, flags.nickname, "127.0.0.1")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	fs := tokenCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
	fs.Int64Var(&flags.uid, "uid", 0, "user id carried by the token")
	fs.StringVar(&flags.nickname, "nickname", "dev", "nickname carried by the token")
	rootCmd.AddCommand(tokenCommand)
}
