package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farewatch/farewatch/internal/usecase"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one fare search and print the summary",
	Long: `Search runs a single fare search using the configured plan, prints the
summary to stdout, and optionally delivers it to the configured Telegram
chat. Flags override individual plan fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.close()

		plan := app.plan
		flags := cmd.Flags()
		if v, _ := flags.GetString("origin"); v != "" {
			plan.Origin = v
		}
		if v, _ := flags.GetString("destination"); v != "" {
			plan.Destination = v
		}
		if v, _ := flags.GetString("start-date"); v != "" {
			plan.StartDate = v
		}
		if flags.Changed("flexibility") {
			plan.StartDateFlexibility, _ = flags.GetInt("flexibility")
		}
		if flags.Changed("min-stay") {
			plan.StayDuration.MinDays, _ = flags.GetInt("min-stay")
		}
		if flags.Changed("max-stay") {
			plan.StayDuration.MaxDays, _ = flags.GetInt("max-stay")
		}
		if flags.Changed("max-price") {
			plan.MaxPrice, _ = flags.GetFloat64("max-price")
		}
		if flags.Changed("nonstop") {
			plan.NonstopOnly, _ = flags.GetBool("nonstop")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.Watch.RunTimeout)
		defer cancel()

		run, err := app.watcher.Run(ctx, plan)
		if err != nil {
			return err
		}

		summary := usecase.FormatRun(run)
		fmt.Println(summary)

		if notify, _ := flags.GetBool("notify"); notify {
			if app.cfg.Telegram.ChatID == 0 {
				return fmt.Errorf("--notify requires TELEGRAM_CHAT_ID to be set")
			}
			if err := app.notifier.Send(ctx, app.cfg.Telegram.ChatID, summary); err != nil {
				return fmt.Errorf("deliver summary: %w", err)
			}
		}

		return nil
	},
}

func init() {
	searchCmd.Flags().String("origin", "", "origin airport IATA code")
	searchCmd.Flags().String("destination", "", "destination airport IATA code")
	searchCmd.Flags().String("start-date", "", "nominal departure date (YYYY-MM-DD)")
	searchCmd.Flags().Int("flexibility", 0, "days of departure flexibility in each direction")
	searchCmd.Flags().Int("min-stay", 0, "minimum stay in days")
	searchCmd.Flags().Int("max-stay", 0, "maximum stay in days")
	searchCmd.Flags().Float64("max-price", 0, "price ceiling in the plan currency")
	searchCmd.Flags().Bool("nonstop", false, "reject itineraries with stops")
	searchCmd.Flags().Bool("notify", false, "also deliver the summary to the configured Telegram chat")

	rootCmd.AddCommand(searchCmd)
}
