package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/infra/credentials"
)

var errNoDatabase = errors.New("integrations require STORAGE_DRIVER=postgres")

func (c *cli) integrationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Manage stored integration credentials",
	}

	var url, secret string
	setWebhook := &cobra.Command{
		Use:   "set-webhook",
		Short: "Store the outbound notification webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.credentials()
			if err != nil {
				return err
			}
			if secret == "" {
				secret = strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_SECRET"))
			}
			if err := store.SetNotifyWebhook(cmd.Context(), url, secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "notify webhook set to %s (signed=%t)\n", url, secret != "")
			return nil
		},
	}
	setWebhook.Flags().StringVar(&url, "url", "", "webhook URL (http or https)")
	setWebhook.Flags().StringVar(&secret, "secret", "", "HMAC secret; falls back to NOTIFY_WEBHOOK_SECRET")
	_ = setWebhook.MarkFlagRequired("url")

	clearWebhook := &cobra.Command{
		Use:   "clear-webhook",
		Short: "Remove the stored notification webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.credentials()
			if err != nil {
				return err
			}
			if err := store.ClearNotifyWebhook(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "notify webhook cleared")
			return nil
		},
	}

	cmd.AddCommand(setWebhook, clearWebhook)
	return cmd
}

func (c *cli) credentials() (*credentials.Store, error) {
	store := c.rt.Credentials()
	if store == nil {
		return nil, errNoDatabase
	}
	return store, nil
}
