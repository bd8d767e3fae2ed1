package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkhayef/podplanner/internal/notification"
)

func newMailTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mail-test <to>",
		Short: "Send a test email through the configured SMTP relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := ctx.sender()
			if err != nil {
				return fmt.Errorf("create sender: %w", err)
			}

			sendCtx := cmd.Context()
			if ctx.mailTimeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(sendCtx, ctx.mailTimeout)
				defer cancel()
			}

			msg := notification.Message{
				To:      args[0],
				Subject: "PodPlanner test email",
				HTML:    "<p>Mail delivery from PodPlanner is working.</p>",
				Text:    "Mail delivery from PodPlanner is working.",
			}
			if err := sender.Send(sendCtx, msg); err != nil {
				return fmt.Errorf("send test email: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %s\n", args[0])
			return nil
		},
	}
}
