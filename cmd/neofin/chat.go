package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		profile  string
		concise  bool
		noWeb    bool
		noStocks bool
		docs     []string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the NeoFin assistant (type 'bye' to leave)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			risk, err := models.ParseRiskProfile(profile)
			if err != nil {
				return err
			}
			opts := models.ChatOptions{
				Profile:   risk,
				Mode:      models.ModeDetailed,
				WebSearch: !noWeb,
				StockData: !noStocks,
			}
			if concise {
				opts.Mode = models.ModeConcise
			}

			a, err := openAssistant()
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.Features.Chat {
				return errors.New("chat needs a chat model: set GROQ_API_KEY (or GOOGLE_API_KEY with llm.provider gemini)")
			}

			ctx := cmd.Context()
			s, err := a.Sessions.Create(ctx)
			if err != nil {
				return err
			}
			defer a.Sessions.Destroy(ctx, s.ID)

			out := cmd.OutOrStdout()
			if len(docs) > 0 {
				loaded, err := readFiles(docs)
				if err != nil {
					return err
				}
				report, err := a.Knowledge.Ingest(ctx, s, loaded)
				for _, w := range report.Warnings {
					fmt.Fprintln(out, "warning:", w)
				}
				if err != nil {
					return fmt.Errorf("knowledge base: %w", err)
				}
				fmt.Fprintf(out, "Indexed %d chunks from %s.\n", report.Chunks, strings.Join(report.Documents, ", "))
			}

			fmt.Fprintf(out, "NeoFin (%s, %s mode). Ask about saving, investing or a ticker; 'bye' quits.\n", risk, opts.Mode)
			in := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "\nYou: ")
				if !in.Scan() {
					fmt.Fprintln(out)
					return in.Err()
				}
				text := strings.TrimSpace(in.Text())
				switch {
				case text == "":
					continue
				case strings.EqualFold(text, "bye"):
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}

				reply, err := a.Chat.Reply(ctx, s, text, opts)
				for _, w := range reply.Warnings {
					fmt.Fprintln(out, "warning:", w)
				}
				if errors.Is(err, domsvc.ErrNotConfigured) {
					return err
				}
				if err != nil {
					fmt.Fprintln(out, "An error occurred while getting response:", err)
					continue
				}
				fmt.Fprintln(out)
				if err := renderMarkdown(out, reply.Reply); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "medium", "risk profile: low, medium or high")
	cmd.Flags().BoolVar(&concise, "concise", false, "short answers")
	cmd.Flags().BoolVar(&noWeb, "no-web", false, "skip web search")
	cmd.Flags().BoolVar(&noStocks, "no-stocks", false, "skip live stock data for tickers in the question")
	cmd.Flags().StringSliceVar(&docs, "doc", nil, "PDF or text file to ground answers in (repeatable)")
	return cmd
}
