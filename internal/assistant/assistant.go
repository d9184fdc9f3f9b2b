package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsight/internal/core"

	"google.golang.org/genai"
)

// FallbackMessage is returned whenever the model is unavailable or
// produces no usable answer. The chat endpoint never surfaces raw
// provider errors to the user.
const FallbackMessage = "I can't reach the assistant right now. Please try again in a few minutes."

// Snapshot is the financial context injected into every prompt so the
// model answers about the user's actual numbers instead of generalities.
type Snapshot struct {
	CurrencySymbol string
	MonthlyIncome  float64
	GoalLabel      string
	TotalIncome    float64
	TotalExpenses  float64
	TopCategories  []core.CategoryAllocation
	Insights       []string
}

// Assistant answers budgeting questions through the Gemini API.
type Assistant struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New creates an assistant. An empty API key disables the assistant:
// New returns (nil, nil) and Ask on a nil assistant falls back.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Assistant, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Assistant{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Ask sends the question with the financial snapshot and returns the
// model's answer, or FallbackMessage on any failure.
func (a *Assistant) Ask(ctx context.Context, question string, snap Snapshot) string {
	if a == nil || a.client == nil {
		return FallbackMessage
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(question, snap)},
			},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Assistant request failed", "model", a.model, "error", err)
		return FallbackMessage
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		slog.WarnContext(ctx, "Assistant returned an empty answer", "model", a.model)
		return FallbackMessage
	}

	return answer
}

func buildPrompt(question string, snap Snapshot) string {
	var b strings.Builder

	b.WriteString("You are a personal finance assistant inside a budgeting app. ")
	b.WriteString("Answer briefly and concretely, using the user's own numbers below. ")
	b.WriteString("Do not give investment advice or recommend specific financial products.\n\n")

	b.WriteString("User financial snapshot:\n")
	fmt.Fprintf(&b, "- Monthly income: %s\n", core.FormatAmount(snap.CurrencySymbol, snap.MonthlyIncome))
	if snap.GoalLabel != "" {
		fmt.Fprintf(&b, "- Primary goal: %s\n", snap.GoalLabel)
	}
	fmt.Fprintf(&b, "- Income recorded over the last 3 months: %s\n", core.FormatAmount(snap.CurrencySymbol, snap.TotalIncome))
	fmt.Fprintf(&b, "- Expenses recorded over the last 3 months: %s\n", core.FormatAmount(snap.CurrencySymbol, snap.TotalExpenses))

	if len(snap.TopCategories) > 0 {
		b.WriteString("- Recommended budget allocation:\n")
		for _, alloc := range snap.TopCategories {
			fmt.Fprintf(&b, "  - %s: %s (%s)\n",
				alloc.Category,
				core.FormatAmount(snap.CurrencySymbol, alloc.Amount),
				core.FormatPercent(alloc.Percentage))
		}
	}

	if len(snap.Insights) > 0 {
		b.WriteString("- Current insights:\n")
		for _, insight := range snap.Insights {
			fmt.Fprintf(&b, "  - %s\n", insight)
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)

	return b.String()
}
