// AngelaMos | 2026
// subscription.go

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/subscription"
	"github.com/carterperez-dev/jobtracker/internal/usage"
)

func newSubscriptionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Inspect and change user plans",
	}

	cmd.AddCommand(
		newSubscriptionGrantCmd(opts),
		newSubscriptionShowCmd(opts),
		newSubscriptionCancelCmd(opts),
	)

	return cmd
}

// withService opens the database and hands a subscription service to fn.
func (o *rootOptions) withService(
	cmd *cobra.Command,
	fn func(ctx context.Context, svc *subscription.Service) error,
) error {
	ctx := cmd.Context()
	cfg, db, err := o.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := newLogger(cmd)
	store := subscription.NewStore(
		subscription.NewRepository(db.DB),
		subscription.StoreConfig{
			DefaultDurationMonths: cfg.Subscription.DefaultDurationMonths,
			MaxDurationMonths:     cfg.Subscription.MaxDurationMonths,
		},
		logger,
	)
	usageStore := usage.NewStore(usage.NewRepository(db.DB))

	return fn(ctx, subscription.NewService(store, usageStore, logger))
}

func newSubscriptionGrantCmd(opts *rootOptions) *cobra.Command {
	var (
		tierName string
		months   int
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "grant USER_ID",
		Short: "Put a user on a plan starting now",
		Args:  userIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := pricing.ParseTier(tierName)
			if err != nil {
				return err
			}
			if months < 0 {
				return fmt.Errorf("--months must not be negative")
			}

			return opts.withService(cmd, func(ctx context.Context, svc *subscription.Service) error {
				sub, err := svc.CreateOrUpdateSubscription(ctx, args[0], tier, subscription.Options{
					PaymentMethod:  subscription.PaymentManual,
					DurationMonths: months,
					AdminNotes:     notes,
				})
				if err != nil {
					return err
				}
				printSubscription(cmd.OutOrStdout(), sub)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tierName, "tier", string(pricing.TierPro), "plan tier (free, pro, custom)")
	cmd.Flags().IntVar(&months, "months", 0, "paid period in months; 0 uses the configured default")
	cmd.Flags().StringVar(&notes, "notes", "", "admin notes stored with the subscription")

	return cmd
}

func newSubscriptionShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show USER_ID",
		Short: "Print a user's plan and this month's usage",
		Args:  userIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *subscription.Service) error {
				overview, err := svc.GetSubscriptionWithUsage(ctx, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "tier:          %s\n", overview.Tier)
				if overview.Subscription != nil {
					printSubscription(out, overview.Subscription)
				}
				if overview.Usage != nil {
					current := overview.Usage.Current()
					fmt.Fprintf(out, "month:         %s\n", overview.Usage.CurrentMonth)
					fmt.Fprintf(out, "jobs created:  %d / %s\n",
						current.JobsCreated, overview.Config.Features.JobsPerMonth)
					fmt.Fprintf(out, "chat messages: %d / %s\n",
						current.ChatMessages, overview.Config.Features.ChatMessagesPerMonth)
				}
				return nil
			})
		},
	}
}

func newSubscriptionCancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel USER_ID",
		Short: "Cancel a user's plan and return them to free",
		Args:  userIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *subscription.Service) error {
				cancelled, err := svc.CancelToFree(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s plan for %s\n", cancelled.Tier, args[0])
				return nil
			})
		},
	}
}

func userIDArg(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one USER_ID, got %d", len(args))
	}
	if err := uuid.Validate(args[0]); err != nil {
		return fmt.Errorf("USER_ID %q is not a UUID", args[0])
	}
	return nil
}

func printSubscription(w io.Writer, sub *subscription.Subscription) {
	fmt.Fprintf(w, "subscription:  %s (%s)\n", sub.Tier, sub.Status)
	fmt.Fprintf(w, "started:       %s\n", sub.StartDate.UTC().Format(time.RFC3339))
	if sub.EndDate != nil {
		fmt.Fprintf(w, "ends:          %s\n", sub.EndDate.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "ends:          never\n")
	}
}
