package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvngu/signalstock/internal/bus"
	"github.com/mvngu/signalstock/internal/config"
	"github.com/mvngu/signalstock/internal/identity"
)

// withBridge loads config, dials NATS and hands an identity bridge to fn.
func withBridge(fn func(ctx context.Context, b *identity.Bridge) error) error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := bus.Connect(cfg.Nats.URL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bridge, err := buildBridge(ctx, cfg, conn)
	if err != nil {
		return err
	}
	return fn(ctx, bridge)
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <phone-number>",
		Short: "Start Signal registration (voice call verification)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phone := args[0]
			return withBridge(func(ctx context.Context, b *identity.Bridge) error {
				if err := b.Register(ctx, phone); err != nil {
					return err
				}
				fmt.Printf("Registration started for %s. You will receive a voice call with a verification code.\n", phone)
				fmt.Printf("Complete it with: signalstock verify %s <code>\n", phone)
				return nil
			})
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <phone-number> <code>",
		Short: "Complete Signal registration with the verification code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			phone, code := args[0], args[1]
			return withBridge(func(ctx context.Context, b *identity.Bridge) error {
				if err := b.Verify(ctx, phone, code); err != nil {
					return err
				}
				fmt.Printf("Verified %s. This number is now the active sender.\n", phone)
				return nil
			})
		},
	}
}

func sendCmd() *cobra.Command {
	var groupID string
	cmd := &cobra.Command{
		Use:   "send [recipient] --message <text>",
		Short: "Send a Signal message through the registered number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			if message == "" {
				return fmt.Errorf("--message is required")
			}
			var recipient string
			if len(args) == 1 {
				recipient = args[0]
			}
			if recipient == "" && groupID == "" {
				return fmt.Errorf("a recipient or --group-id is required")
			}
			return withBridge(func(ctx context.Context, b *identity.Bridge) error {
				if err := b.Send(ctx, recipient, groupID, message); err != nil {
					return err
				}
				fmt.Println("Message sent successfully")
				return nil
			})
		},
	}
	cmd.Flags().String("message", "", "message text to send")
	cmd.Flags().StringVar(&groupID, "group-id", "", "Signal group ID to send to")
	return cmd
}
