package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgallant/tfsa"
	"google.golang.org/genai"
)

// Suggest asks the model for this week's trades: one plan per book, spending
// the scheduled budget across the candidate symbols. The answer is advisory
// markdown; nothing is recorded.
func Suggest(ctx context.Context, client *genai.Client, sys *tfsa.System, week int) (string, error) {
	book, err := tfsa.Normalize(sys.Stock, sys.Crypto, sys.Classify)
	if err != nil {
		return "", err
	}

	var payload strings.Builder
	fmt.Fprintf(&payload, "Week %d, budget %s per book.\n\n", week, sys.Schedule.Contribution(week))
	payload.WriteString("Current positions:\n")
	for _, p := range book.PositionsInClass(tfsa.StockClass) {
		fmt.Fprintf(&payload, "- stock %s: %s @ %s avg\n", p.Symbol, p.Quantity, p.AvgCost)
	}
	for _, p := range book.PositionsInClass(tfsa.CryptoClass) {
		fmt.Fprintf(&payload, "- crypto %s: %s @ %s avg\n", p.Symbol, p.Quantity, p.AvgCost)
	}

	expert := &Expert{
		Name:      "Planner",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You plan one week of purchases for a small two-book TFSA: a stock book
			(fractional ETF shares) and a crypto book. Spend close to the given
			budget in each book, prefer averaging into existing positions, and
			output a short markdown plan with one table per book:
			action, symbol, approximate quantity, approximate price.
			State clearly that this is not financial advice.
		`}}},
		},
	}
	if err := expert.Start(ctx, client); err != nil {
		return "", err
	}
	content, err := expert.Ask(ctx, &genai.Part{Text: payload.String()})
	if err != nil {
		return "", err
	}
	return content.Parts[0].Text, nil
}
