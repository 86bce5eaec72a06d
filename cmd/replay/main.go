// Command replay runs the analyzer over candle history recorded in the
// journal, printing every signal transition. Useful for tuning thresholds
// against data the live pipeline already saw.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"market-analyzer/internal/analysis"
	"market-analyzer/internal/model"
	sqlitestore "market-analyzer/internal/store/sqlite"
)

func main() {
	var (
		dbPath  = flag.String("db", "data/signals.db", "journal database path")
		symbol  = flag.String("symbol", "", "symbol to replay (required)")
		insType = flag.String("type", string(model.InstrumentCrypto), "instrument type: FOREX, CRYPTO or EQUITY")
		window  = flag.Int("window", 200, "rolling window size in candles")
		afterTS = flag.Int64("after", 0, "replay candles after this epoch-ms timestamp")
		verbose = flag.Bool("v", false, "print every evaluation, not just action changes")
	)
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}

	journal, err := sqlitestore.Open(*dbPath)
	if err != nil {
		log.Fatalf("[replay] open journal: %v", err)
	}
	defer journal.Close()

	candles, err := journal.Candles(*symbol, *afterTS)
	if err != nil {
		log.Fatalf("[replay] read candles: %v", err)
	}
	if len(candles) == 0 {
		log.Fatalf("[replay] no candles recorded for %s", *symbol)
	}
	log.Printf("[replay] %d candles for %s, window=%d", len(candles), *symbol, *window)

	core := analysis.New(analysis.ConfigFor(model.InstrumentType(*insType)))

	var lastAction model.Action
	evaluations, transitions := 0, 0

	for end := 1; end <= len(candles); end++ {
		start := end - *window
		if start < 0 {
			start = 0
		}

		result := core.Analyze(candles[start:end])
		sig := result.Signal()
		if sig == nil {
			continue
		}
		evaluations++

		changed := sig.Action != lastAction
		if changed {
			transitions++
			lastAction = sig.Action
		}
		if !changed && !*verbose {
			continue
		}

		at := candles[end-1].Time().Format("2006-01-02 15:04:05")
		fmt.Printf("%s  %-4s %-11s conf=%3d prob=%3d trend=%-9s entry=%v sl=%v tp=%v  %s\n",
			at, sig.Action, sig.Strength, sig.Confidence, sig.Probability,
			result.Trend, sig.EntryPrice, sig.StopLoss, sig.TakeProfit, sig.Reason)
	}

	fmt.Printf("\n%d evaluations, %d action transitions\n", evaluations, transitions)
}
