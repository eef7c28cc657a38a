package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgallant/tfsa"
	"github.com/sgallant/tfsa/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Loader supplies the current system to the bookkeeper's functions; the
// caller decides where the ledger files live.
type Loader func() (*tfsa.System, error)

// newFacilitator creates the expert in charge of the conversation.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They are at your service and keep context of your previous questions.

			The user runs a small weekly-funded TFSA split between a stock book and a
			crypto book, compared against a 3% savings account and S&P 500 dollar-cost
			averaging. Check the Bookkeeper first to learn what he actually holds
			before answering anything about "my portfolio".
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst returns the market-research expert, grounded by search.
func NewAnalyst() *Expert {
	return &Expert{
		Name: "Analyst",
		Description: `This is a market analyst, aware of financial products,
		companies and the latest market news. Ask the Analyst whenever recent
		or grounding information is needed.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a market analyst. You can search and find anything related to
			financial institutions, companies, markets, ETFs and crypto assets.
			Leverage Google Search to ground your assertions, and relate the latest
			news to the user's request.
				`}}},
		},
	}
}

// NewBookkeeper returns the ledger expert. Its functions read the user's
// actual books through the loader.
func NewBookkeeper(load Loader) *Expert {
	lib := []Function{summaryFunc(load), holdingsFunc(load), budgetFunc(load)}

	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. He reads the user's weekly ledger and
		computes the figures about contributions, holdings, performance and the
		benchmark comparisons.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are the bookkeeper of the user's weekly TFSA ledger.
				Use the available tools to get real figures before answering:
				  - the performance summary with benchmark deltas
				  - the current holdings of both books
				  - this week's contribution budget
				Never invent a figure a tool can provide.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

func okResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": output,
		},
	}
}

func summaryFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Summary",
			Description: `Summary computes today's performance card: total contributed,
			current value, unrealized P/L, IRR, TWR and the deltas versus the HISA and
			S&P 500 DCA benchmarks.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown summary card of the portfolio's performance.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			sys, err := load()
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			m, err := sys.Metrics(tfsa.Today())
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			return okResponse(id, "Summary", renderer.RenderSummary(renderer.NewSummary(m), renderer.SummaryRenderOptions{}))
		},
	}
}

func holdingsFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Holdings",
			Description: `Holdings lists every position of both books with quantity, average cost and currency.`,
			Parameters:  &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the current positions.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			sys, err := load()
			if err != nil {
				return errResponse(id, "Holdings", err)
			}
			book, err := tfsa.Normalize(sys.Stock, sys.Crypto, sys.Classify)
			if err != nil {
				return errResponse(id, "Holdings", err)
			}
			var b strings.Builder
			b.WriteString("| Symbol | Class | Qty | Avg Cost |\n|---|---|---:|---:|\n")
			for _, p := range book.PositionsInClass(tfsa.StockClass) {
				fmt.Fprintf(&b, "| %s | stock | %s | %s |\n", p.Symbol, p.Quantity, p.AvgCost)
			}
			for _, p := range book.PositionsInClass(tfsa.CryptoClass) {
				fmt.Fprintf(&b, "| %s | crypto | %s | %s |\n", p.Symbol, p.Quantity, p.AvgCost)
			}
			return okResponse(id, "Holdings", b.String())
		},
	}
}

func budgetFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Budget",
			Description: `Budget returns the current week number and the scheduled
			contribution per book for this week.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The week number and scheduled per-book deposit.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			sys, err := load()
			if err != nil {
				return errResponse(id, "Budget", err)
			}
			week, err := sys.Schedule.WeekOf(tfsa.Today())
			if err != nil {
				return errResponse(id, "Budget", err)
			}
			return okResponse(id, "Budget", fmt.Sprintf("Week %d, %s per book (%s combined).",
				week, sys.Schedule.Contribution(week), sys.Schedule.Combined(week)))
		},
	}
}
