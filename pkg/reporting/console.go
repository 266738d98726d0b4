package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/execution"
)

// OrderOutcome pairs a validated plan with its submission result.
type OrderOutcome struct {
	Plan    execution.OrderPlan
	OrderID string
	Status  string
	Err     error
}

// ConsoleReporter prints human-facing summaries of an execution run.
type ConsoleReporter struct{}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintStartup prints the run parameters before a batch starts.
func (r *ConsoleReporter) PrintStartup(environment string, paper bool, cash float64, decisionCount int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("ORDER EXECUTION")
	t.SetStyle(table.StyleRounded)

	mode := "LIVE"
	if paper {
		mode = "PAPER"
	}

	t.AppendRows([]table.Row{
		{"🔧 Environment", environment},
		{"🏪 Trading Mode", mode},
		{"💰 Cash", fmt.Sprintf("$%.2f", cash)},
		{"📋 Decisions", decisionCount},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 35, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintWatchlist prints the symbols in the batch with their last prices.
func (r *ConsoleReporter) PrintWatchlist(prices map[string]float64, order []string) {
	if len(order) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("WATCHLIST")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Last Price"})

	for _, symbol := range order {
		price, ok := prices[symbol]
		if !ok {
			t.AppendRow(table.Row{symbol, "n/a"})
			continue
		}
		t.AppendRow(table.Row{symbol, fmt.Sprintf("$%.2f", price)})
	}

	t.Render()
	fmt.Println()
}

// PrintBatchSummary prints the validation and submission outcome of one
// batch: what was sent, what was rejected and why, what needed no order.
func (r *ConsoleReporter) PrintBatchSummary(result *execution.BatchResult, outcomes []OrderOutcome) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("BATCH SUMMARY")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Action", "Side", "Qty", "Requested", "Status"})

	for _, o := range outcomes {
		status := o.Status
		if o.Err != nil {
			status = "❌ " + o.Err.Error()
		} else if status == "" {
			status = "submitted"
		}
		t.AppendRow(table.Row{
			o.Plan.Symbol, o.Plan.Action, o.Plan.Side, o.Plan.Qty, o.Plan.Original, status,
		})
	}
	for _, rej := range result.Rejections {
		t.AppendRow(table.Row{rej.Symbol, rej.Action, "-", "-", "-", "rejected: " + rej.Reason})
	}
	for _, skip := range result.Skips {
		t.AppendRow(table.Row{skip.Symbol, skip.Action, "-", "-", "-", "skipped"})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, WidthMin: 20, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Printf("\n✅ %d submitted, ❌ %d rejected, ⏭️  %d skipped\n",
		len(outcomes), len(result.Rejections), len(result.Skips))
}
