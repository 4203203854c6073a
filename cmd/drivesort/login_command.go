package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the drive using the device-code flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := ctx.tokenManager()
			if err != nil {
				return err
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			code, err := tokens.StartDeviceCode(runCtx)
			if err != nil {
				return fmt.Errorf("start device login: %w", err)
			}

			out := cmd.OutOrStdout()
			if code.Message != "" {
				fmt.Fprintln(out, code.Message)
			} else {
				fmt.Fprintf(out, "Visit %s and enter the code %s\n", code.VerificationURI, code.UserCode)
			}
			fmt.Fprintln(out, "Waiting for sign-in to complete...")

			grant, err := tokens.PollDeviceCode(runCtx, code)
			if err != nil {
				return fmt.Errorf("complete device login: %w", err)
			}
			if err := tokens.Store(grant); err != nil {
				return fmt.Errorf("store credentials: %w", err)
			}

			fmt.Fprintln(out, "Login successful. Credentials saved.")
			return nil
		},
	}
	return cmd
}
