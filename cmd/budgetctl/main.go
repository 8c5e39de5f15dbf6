/*
main.go - Terminal reporting for the envelope budget ledger

PURPOSE:
  Reads the ledger straight from the SQLite store and renders the same
  reports the chat transport shows, as terminal tables. Useful for
  checking the budget without the chat transport running.

USAGE:
  budgetctl [-db path] buckets     Envelope table with balances
  budgetctl [-db path] summary     Whole-budget overview
  budgetctl [-db path] history     Recent transactions
  budgetctl [-db path] income      Recent income
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/warp/envelope-engine/budget"
	"github.com/warp/envelope-engine/config"
	"github.com/warp/envelope-engine/store/sqlite"
)

const historyLimit = 10

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.SQLitePath, "SQLite database path")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "summary"
	}

	st, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	l, err := st.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load ledger: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "buckets":
		renderBuckets(l)
	case "summary":
		renderSummary(l)
	case "history":
		renderHistory(l)
	case "income":
		renderIncome(l)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want buckets, summary, history, or income)\n", command)
		os.Exit(2)
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func renderBuckets(l *budget.Ledger) {
	if l.Buckets.Len() == 0 {
		fmt.Println("No buckets set up yet.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Name", "Target", "Allocated", "Spent", "Available", "Status"})
	for _, b := range l.Buckets.All() {
		if b.IsCreditCard() {
			credit := budget.ReportCredit(l, b)
			table.Append([]string{
				string(b.Key), b.Name, money(b.Target),
				"-", "-", money(credit.AvailableCredit),
				fmt.Sprintf("%s debt (%s, %s)", money(credit.Debt), credit.Utilization.StringFixed(1)+"%", credit.Tier),
			})
			continue
		}
		report := budget.ReportEnvelope(l, b)
		table.Append([]string{
			string(b.Key), b.Name, money(b.Target),
			money(report.Allocated), money(report.Spent), money(report.Available),
			string(report.Status),
		})
	}
	table.Render()
}

func renderSummary(l *budget.Ledger) {
	s := budget.Summarize(l)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Amount"})
	table.Append([]string{"Total income", money(s.TotalIncome)})
	table.Append([]string{"Total allocated", money(s.TotalAllocated)})
	table.Append([]string{"Total spent", money(s.TotalSpent)})
	table.Append([]string{"Total available", money(s.TotalAvailable)})
	table.Append([]string{"Unallocated", money(s.Unallocated)})
	table.Render()

	if len(s.IncomeByPerson) > 0 {
		people := make([]string, 0, len(s.IncomeByPerson))
		for person := range s.IncomeByPerson {
			people = append(people, person)
		}
		sort.Strings(people)

		fmt.Println("\nIncome by person:")
		for _, person := range people {
			fmt.Printf("  %s: %s\n", person, money(s.IncomeByPerson[person]))
		}
	}

	if s.OverAllocated {
		fmt.Printf("\nWARNING: over-allocated by %s\n", money(s.Unallocated.Abs()))
	}
	for _, report := range s.Overspent {
		fmt.Printf("OVERSPENT: %s %s by %s\n", report.Bucket.Key, report.Bucket.Name, money(report.Available.Abs()))
	}
}

func renderHistory(l *budget.Ledger) {
	if len(l.Transactions) == 0 {
		fmt.Println("No transactions found.")
		return
	}

	txs := make([]budget.Transaction, len(l.Transactions))
	copy(txs, l.Transactions)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	if len(txs) > historyLimit {
		txs = txs[:historyLimit]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Bucket", "Amount", "Description", "CC"})
	for _, tx := range txs {
		name := string(tx.Bucket)
		if b, ok := l.Buckets.Get(tx.Bucket); ok {
			name = fmt.Sprintf("%s %s", tx.Bucket, b.Name)
		}
		cc := ""
		if tx.CCPurchase {
			cc = "yes"
		}
		table.Append([]string{
			tx.Date.Format("2006-01-02 15:04"),
			name,
			money(tx.Amount),
			tx.Description,
			cc,
		})
	}
	table.Render()
}

func renderIncome(l *budget.Ledger) {
	if len(l.Income) == 0 {
		fmt.Println("No income recorded yet.")
		return
	}

	records := make([]budget.IncomeRecord, len(l.Income))
	copy(records, l.Income)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	if len(records) > historyLimit {
		records = records[:historyLimit]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Person", "Amount", "Description"})
	for _, rec := range records {
		table.Append([]string{
			rec.Date.Format("2006-01-02 15:04"),
			rec.Person,
			money(rec.Amount),
			rec.Description,
		})
	}
	table.Render()
}
