package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/config"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/spf13/cobra"
)

// TokenReport token 命令输出
type TokenReport struct {
	Token     string    `json:"token"`
	AdminID   uint      `json:"admin_id"`
	Username  string    `json:"username"`
	IsSuper   bool      `json:"is_super"`
	ExpiresAt time.Time `json:"expires_at"`
}

type tokenOptions struct {
	configPath  string
	secret      string
	issuer      string
	expireHours int
	adminID     uint
	username    string
	isSuper     bool
}

// NewTokenCommand 创建 token 命令，签发本地联调用的管理端令牌
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for local testing",
		Long: `Sign an admin JWT with the configured secret.
Production tokens come from the external auth service, this is for local tooling only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file providing jwt settings")
	cmd.Flags().StringVar(&opts.secret, "secret", "", "signing secret, overrides config")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "", "issuer claim, overrides config")
	cmd.Flags().IntVar(&opts.expireHours, "expire-hours", 0, "token lifetime in hours, overrides config")
	cmd.Flags().UintVar(&opts.adminID, "admin-id", 0, "admin id placed in the token")
	cmd.Flags().StringVar(&opts.username, "username", "", "admin username placed in the token")
	cmd.Flags().BoolVar(&opts.isSuper, "super", false, "mark the admin as super admin")
	return cmd
}

func runToken(rootOpts *RootOptions, opts *tokenOptions, cmd *cobra.Command) error {
	if opts.adminID == 0 {
		return errors.New("--admin-id is required")
	}
	jwtCfg, err := resolveJWTConfig(opts)
	if err != nil {
		return err
	}
	token, expiresAt, err := service.NewAdminTokenService(jwtCfg).Issue(opts.adminID, opts.username, opts.isSuper)
	if err != nil {
		return err
	}
	report := &TokenReport{
		Token:     token,
		AdminID:   opts.adminID,
		Username:  opts.username,
		IsSuper:   opts.isSuper,
		ExpiresAt: expiresAt,
	}
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(report, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, report.Token)
		return err
	})
}

func resolveJWTConfig(opts *tokenOptions) (config.JWTConfig, error) {
	var jwtCfg config.JWTConfig
	if strings.TrimSpace(opts.configPath) != "" || strings.TrimSpace(opts.secret) == "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			return jwtCfg, err
		}
		jwtCfg = cfg.JWT
	}
	if strings.TrimSpace(opts.secret) != "" {
		jwtCfg.SecretKey = opts.secret
	}
	if strings.TrimSpace(opts.issuer) != "" {
		jwtCfg.Issuer = opts.issuer
	}
	if opts.expireHours > 0 {
		jwtCfg.ExpireHours = opts.expireHours
	}
	return jwtCfg, nil
}
