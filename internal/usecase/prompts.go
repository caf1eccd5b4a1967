package usecase

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"NeoFin/internal/domain/models"
	"NeoFin/pkg/util"
)

const (
	conciseSuffix  = "Provide a short, summarized reply (Concise Mode)."
	detailedSuffix = "Provide an expanded, in-depth response (Detailed Mode)."

	// quoteSummaryLimit caps the business summary quoted to the model.
	quoteSummaryLimit = 500
)

// FormatUSD renders an amount as "$1,234.50".
func FormatUSD(amount float64) string {
	return money.NewFromFloat(amount, money.USD).Display()
}

func chatSystemPrompt(profile models.RiskProfile, mode models.ResponseMode) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a professional financial assistant. Your name is "NeoFin".
You MUST provide advice and recommendations that are strictly tailored to the user's risk profile.
The user's current risk profile is: **%s**.

- For **Low Risk** users: Prioritize capital preservation. Recommend stable, large-cap stocks (blue-chip), bonds, and diversified ETFs. Be very cautious about speculation.
- For **Medium Risk** users: Recommend a balanced portfolio, including growth stocks, index funds, and some allocation to more stable assets.
- For **High Risk** users: You can discuss more speculative assets, growth stocks, and smaller-cap companies, but ALWAYS remind them of the high risk involved.

**CRITICAL_RULE**: You must NEVER give a "buy" or "sell" recommendation. Instead of "you should buy AAPL," say "AAPL is a strong company that aligns with your risk profile because..."
ALWAYS be helpful, professional, and provide a disclaimer that you are an AI assistant and this is not financial advice.`, profile)
	b.WriteString("\n\n")
	if mode == models.ModeConcise {
		b.WriteString(conciseSuffix)
	} else {
		b.WriteString(detailedSuffix)
	}
	return b.String()
}

func knowledgeBlock(chunks []models.Chunk) string {
	var b strings.Builder
	b.WriteString("--- START (Knowledge Base Context) ---\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "Source %d:\n%s\n\n", i+1, c.Text)
	}
	b.WriteString("--- END (Knowledge Base Context) ---\n")
	return b.String()
}

func searchBlock(results string) string {
	return "--- START (Live Web Search Results) ---\n" + results + "\n--- END (Live Web Search Results) ---\n"
}

func stockBlock(symbol, data string) string {
	return fmt.Sprintf("--- START (Live Stock Data: %s) ---\n%s\n--- END (Live Stock Data: %s) ---\n", symbol, data, symbol)
}

// describeQuote renders a quote as one line of key=value pairs.
func describeQuote(q models.Quote) string {
	num := func(v float64) string {
		if v == 0 {
			return "N/A"
		}
		return fmt.Sprintf("%.2f", v)
	}
	name := q.CompanyName
	if name == "" {
		name = "N/A"
	}
	summary := "N/A"
	if q.Summary != "" {
		summary = util.Truncate(q.Summary, quoteSummaryLimit)
	}
	mcap := "N/A"
	if q.MarketCap > 0 {
		mcap = fmt.Sprintf("%.0f", q.MarketCap)
	}
	return fmt.Sprintf("Stock Data for %s: company_name=%s, current_price=%s, day_high=%s, day_low=%s, market_cap=%s, 52_week_high=%s, 52_week_low=%s, summary=%s",
		q.Symbol, name, num(q.CurrentPrice), num(q.DayHigh), num(q.DayLow), mcap, num(q.FiftyTwoWkHigh), num(q.FiftyTwoWkLow), summary)
}

func withContext(system, extra string) string {
	if extra == "" {
		return system
	}
	return system + "\n\nUse the following context to answer the user's question:\n" + extra
}

func plannerSystemPrompt(profile models.RiskProfile, lookbackYears int) string {
	return fmt.Sprintf(`You are an expert financial planner named "NeoFin".
You are building a investment plan for a user with a **%s** risk appetite.
You MUST adhere to this risk profile.

**CRITICAL_RULE**: You must NEVER give a "buy" or "sell" recommendation.
Instead of "you should buy AAPL," suggest asset allocations and representative examples.
ALWAYS provide a disclaimer that this is not financial advice.

You MUST use the provided "DATA-DRIVEN CONTEXT" to build your recommendation.
This context contains a list of assets *dynamically selected* to match the user's risk profile,
based on %d years of performance data (Return vs. Risk vs. Sharpe Ratio).

Your job is to synthesize this data and present it as a coherent plan.`, profile, lookbackYears)
}

func planContext(basket models.Basket, quotes []models.QuoteNote, news string, lookbackYears int) string {
	var b strings.Builder
	b.WriteString("--- START DATA-DRIVEN CONTEXT ---\n")
	fmt.Fprintf(&b, "Here is the %d-year performance analysis for assets matching your '%s' profile (Return vs. Risk):\n", lookbackYears, basket.Profile)
	for _, a := range basket.Assets {
		fmt.Fprintf(&b, "- %s: Return=%s%%, Risk=%s%%, Sharpe=%s\n", a.Symbol, num2(a.ReturnPct), num2(a.VolatilityPct), num2(a.Sharpe))
	}
	for _, q := range quotes {
		fmt.Fprintf(&b, "\nLive Data for %s:\n", q.Symbol)
		if q.Quote != nil {
			b.WriteString(describeQuote(*q.Quote))
		} else {
			fmt.Fprintf(&b, "Error fetching data for %s: %s. Ticker might be invalid.", q.Symbol, q.Error)
		}
		b.WriteString("\n")
	}
	if news != "" {
		fmt.Fprintf(&b, "\nRecent Market News:\n%s\n", news)
	}
	b.WriteString("--- END CONTEXT ---")
	return b.String()
}

func planUserMessage(in models.PlanInput, tenure models.TenureResult) string {
	return fmt.Sprintf(`Here is my financial goal:
- **Goal Amount:** %s
- **Investment Plan:** %s as a %s
- **My Risk Profile:** %s
- **Calculated Time Horizon:** %s years

Based on all of this, and especially the provided data-driven context, please provide a recommended investment basket.

Your response should include:
1.  A suggested **Asset Allocation** (e.g., X%% Equity, Y%% Bonds, Z%% Alternatives).
2.  For each asset class, provide 1-2 **representative examples** from the "DATA-DRIVEN CONTEXT", explaining *why* their historical risk/return profile (e.g., "high Sharpe ratio") fits my goal.
3.  A brief justification for why this basket aligns with my risk profile.
4.  The mandatory disclaimer.`,
		FormatUSD(in.Target), FormatUSD(in.Amount), in.Mode.Label(), in.Profile, tenure.String())
}

// num2 prints a statistic the way it was rounded: at most two decimals.
func num2(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
