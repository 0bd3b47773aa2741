// Command fintrack-cli manages the ledger from a terminal, against the same
// store the server uses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/confirm"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const usage = `usage: fintrack-cli <command> [flags]

commands:
  add-transaction  -type -amount -category -description [-date]
  add-budget       -category -amount [-period]
  list             [-type all|income|expense] [-sort date|amount]
  stats            totals, category breakdown and monthly trend
  budgets          budget progress for the current period
  delete-transaction <id> [-yes]
  delete-budget      <id> [-yes]
  quarantined      stored payloads moved aside at load time
`

type app struct {
	cfg     *config.Config
	ledger  *services.LedgerService
	store   backend.Store
	confirm confirm.Provider
	out     io.Writer
	now     func() time.Time
}

func main() {
	cfg, logger := cli.Setup()
	logger = logger.WithComponent(log.ComponentCLI)
	ctx := context.Background()

	be := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if be.Cleanup != nil {
			_ = be.Cleanup()
		}
	}()

	ledger, err := cli.OpenLedger(ctx, logger, cfg, be.Store)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		os.Exit(1)
	}

	a := &app{
		cfg:     cfg,
		ledger:  ledger,
		store:   be.Store,
		confirm: confirm.NewTerminal(os.Stdin, os.Stderr),
		out:     os.Stdout,
		now:     time.Now,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return flag.ErrHelp
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "add-transaction":
		return a.addTransaction(ctx, args)
	case "add-budget":
		return a.addBudget(ctx, args)
	case "list":
		return a.list(args)
	case "stats":
		return a.stats()
	case "budgets":
		return a.budgets()
	case "delete-transaction":
		return a.delete(ctx, args, confirm.DeleteTransaction, a.ledger.DeleteTransaction)
	case "delete-budget":
		return a.delete(ctx, args, confirm.DeleteBudget, a.ledger.DeleteBudget)
	case "quarantined":
		return a.quarantined(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) today() time.Time {
	now := a.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (a *app) addTransaction(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-transaction", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var d core.TransactionDraft
	fs.StringVar(&d.Type, "type", "expense", "income or expense")
	fs.StringVar(&d.Amount, "amount", "", "positive amount")
	fs.StringVar(&d.Category, "category", "", "category name")
	fs.StringVar(&d.Description, "description", "", "description")
	fs.StringVar(&d.Date, "date", core.FormatDay(a.today()), "date as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := a.ledger.AddTransaction(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s %s %.2f %s (%s)\n", t.Type, t.ID, t.Amount, t.Category, t.Date)
	return nil
}

func (a *app) addBudget(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-budget", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var d core.BudgetDraft
	fs.StringVar(&d.Category, "category", "", "expense category")
	fs.StringVar(&d.Amount, "amount", "", "spending ceiling")
	fs.StringVar(&d.Period, "period", string(core.Monthly), "monthly or yearly")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := a.ledger.AddBudget(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added budget %s %s %.2f %s\n", b.ID, b.Category, b.Amount, b.Period)
	return nil
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.out)
	typ := fs.String("type", "all", "all, income or expense")
	sort := fs.String("sort", "date", "date or amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := aggregate.ParseTypeFilter(*typ)
	if err != nil {
		return err
	}
	key, err := aggregate.ParseSortKey(*sort)
	if err != nil {
		return err
	}

	list := aggregate.FilterAndSort(a.ledger.Snapshot().Transactions, filter, key)
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No transactions found")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n", t.ID, t.Date, t.Type, t.Category, t.Amount, t.Description)
	}
	return tw.Flush()
}

func (a *app) stats() error {
	snap := a.ledger.Snapshot()
	d := aggregate.BuildDashboard(snap.Transactions, snap.Budgets, a.today(), a.cfg.RecentLimit)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total Income\t%.2f\n", d.Stats.TotalIncome)
	fmt.Fprintf(tw, "Total Expenses\t%.2f\n", d.Stats.TotalExpenses)
	fmt.Fprintf(tw, "Net Balance\t%.2f\n", d.Stats.Balance)
	fmt.Fprintln(tw, "\nCATEGORY\tSPENT")
	for _, c := range d.CategoryBreakdown {
		fmt.Fprintf(tw, "%s\t%.2f\n", c.Name, c.Value)
	}
	fmt.Fprintln(tw, "\nMONTH\tINCOME\tEXPENSE\tNET")
	for _, m := range d.MonthlyTrend {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", m.Month, m.Income, m.Expense, m.Net)
	}
	return tw.Flush()
}

func (a *app) budgets() error {
	snap := a.ledger.Snapshot()
	progress := aggregate.ComputeBudgetProgress(snap.Budgets, snap.Transactions, a.today())
	if len(progress) == 0 {
		fmt.Fprintln(a.out, "No budgets set")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tPERIOD\tSPENT\tBUDGET\tUSED\tSTATUS")
	for _, p := range progress {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%.0f%%\t%s\n",
			p.ID, p.Category, p.Period, p.Spent, p.Amount, p.Percentage, p.Status())
	}
	return tw.Flush()
}

func (a *app) delete(ctx context.Context, args []string, action func(string) confirm.Action, remove func(context.Context, string) (bool, error)) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(a.out)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	// allow the id before or after the flags
	var id string
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return errors.New("missing id")
	}

	provider := a.confirm
	if *yes {
		provider = confirm.Always
	}
	ok, err := provider.Confirm(ctx, action(id))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}

	removed, err := remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(a.out, "%s not found\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "deleted %s\n", id)
	return nil
}

func (a *app) quarantined(ctx context.Context) error {
	found := false
	for _, key := range []string{a.cfg.TransactionsKey, a.cfg.BudgetsKey} {
		keys, err := a.store.Keys(ctx, key+".corrupt.")
		if err != nil {
			return fmt.Errorf("list quarantined %s: %w", key, err)
		}
		for _, k := range keys {
			fmt.Fprintln(a.out, k)
			found = true
		}
	}
	if !found {
		fmt.Fprintln(a.out, "no quarantined payloads")
	}
	return nil
}
