package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/similigh/fb2gh/internal/fogbugz"
)

var (
	logonEmail    string
	logonPassword string
)

// logonCmd represents the logon command
var logonCmd = &cobra.Command{
	Use:   "logon",
	Short: "Exchange FogBugz credentials for an API token",
	Long: `Log on to FogBugz and print an API token.

Store the token in FOGBUGZ_TOKEN or fogbugz.token so later runs do not
need the password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := logonEmail
		if email == "" {
			email = cfg.FogBugz.Email
		}
		password := logonPassword
		if password == "" {
			password = cfg.FogBugz.Password
		}
		if cfg.FogBugz.URL == "" {
			return errors.New("fogbugz.url is required")
		}
		if email == "" || password == "" {
			return errors.New("--email and --password are required")
		}

		var opts []fogbugz.Option
		opts = append(opts, fogbugz.WithLogger(log()))
		if cfg.FogBugz.InsecureSkipVerify {
			opts = append(opts, fogbugz.WithInsecureSkipVerify())
		}
		fb, err := fogbugz.Logon(cmd.Context(), cfg.FogBugz.URL, email, password, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fb.Token())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logonCmd)
	logonCmd.Flags().StringVar(&logonEmail, "email", "", "FogBugz account email (overrides fogbugz.email)")
	logonCmd.Flags().StringVar(&logonPassword, "password", "", "FogBugz password (overrides fogbugz.password)")
}
