package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/services/goal"
	"NeoFin/internal/usecase"
	xhttp "NeoFin/pkg/http"

	"github.com/spf13/cobra"
)

type goalFlags struct {
	target  float64
	mode    string
	amount  float64
	profile string
	stepUp  float64
}

func (f *goalFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.target, "target", 0, "goal amount in USD")
	cmd.Flags().StringVar(&f.mode, "mode", "lumpsum", "lumpsum or sip")
	cmd.Flags().Float64Var(&f.amount, "amount", 0, "lump sum, or monthly SIP amount, in USD")
	cmd.Flags().StringVar(&f.profile, "profile", "medium", "risk profile: low, medium or high")
	cmd.Flags().Float64Var(&f.stepUp, "step-up", 0, "yearly SIP increase in percent; giving the flag, even 0, simulates a step-up SIP")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("amount")
}

// input validates the flags with the same rules as the HTTP API.
func (f *goalFlags) input(cmd *cobra.Command) (models.PlanInput, error) {
	req := models.TenureRequest{
		Target:        f.target,
		Mode:          strings.ToLower(f.mode),
		Amount:        f.amount,
		RiskProfile:   f.profile,
		StepUpPercent: f.stepUp,
	}
	if cmd.Flags().Changed("step-up") {
		on := true
		req.StepUp = &on
	}
	if err := xhttp.PrepareStruct(cmd.Context(), &req); err != nil {
		return models.PlanInput{}, errors.New(xhttp.ValidationMessage(err))
	}
	return req.Input()
}

func newTenureCmd() *cobra.Command {
	var f goalFlags
	cmd := &cobra.Command{
		Use:   "tenure",
		Short: "Estimate how many years a goal takes",
		Example: `  neofin tenure --target 100000 --amount 25000
  neofin tenure --target 1000000 --mode sip --amount 1000 --step-up 10 --profile high`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			g := in.Goal()
			if err := g.Validate(); err != nil {
				return err
			}
			printTenure(cmd.OutOrStdout(), in, goal.EstimateTenure(g))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newPlanCmd() *cobra.Command {
	var f goalFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a data-driven investment plan for a goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			a, err := openAssistant()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Analyzing historical data and building your plan...")
			res, err := a.Planner.Plan(cmd.Context(), in)
			if res.Tenure.Status != "" {
				printTenure(out, in, res.Tenure)
			}
			if errors.Is(err, domsvc.ErrNotConfigured) {
				return errors.New("planning needs a chat model: set GROQ_API_KEY (or GOOGLE_API_KEY with llm.provider gemini)")
			}
			if err != nil {
				return err
			}
			return renderMarkdown(out, planMarkdown(res))
		},
	}
	f.register(cmd)
	return cmd
}

func printTenure(w io.Writer, in models.PlanInput, t models.TenureResult) {
	plan := usecase.FormatUSD(in.Amount)
	if in.Mode == models.SIP {
		plan += " per month"
	}
	fmt.Fprintf(w, "Goal: %s  Plan: %s (%s)  Profile: %s\n",
		usecase.FormatUSD(in.Target), plan, in.Mode.Label(), in.Profile)
	fmt.Fprintln(w, t.Message())
}

func planMarkdown(res models.PlanResult) string {
	var b strings.Builder
	if res.Basket != nil {
		b.WriteString("## Recommended basket\n\n")
		b.WriteString("| Symbol | Return % | Volatility % | Sharpe |\n|---|---:|---:|---:|\n")
		for _, a := range res.Basket.Assets {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f |\n", a.Symbol, a.ReturnPct, a.VolatilityPct, a.Sharpe)
		}
		b.WriteString("\n")
	}
	if res.Narrative != "" {
		b.WriteString("## Recommendation\n\n")
		b.WriteString(res.Narrative)
		b.WriteString("\n")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\n> %s\n", w)
	}
	return b.String()
}
