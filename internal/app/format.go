package app

import (
	"fmt"
	"strings"
	"time"

	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/strategy/indicators"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatSignalSubject builds the subject line for an immediate alert,
// e.g. "BTCUSDT 5m Alert: BUY".
func formatSignalSubject(symbol, interval string, kind domain.SignalKind) string {
	return fmt.Sprintf("%s %s Alert: %s", symbol, interval, kind)
}

// formatSignalBody builds the plain-text body for an immediate alert.
func formatSignalBody(symbol, interval string, sig domain.Signal, reading indicators.Reading) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s Alert: %s\n\n", symbol, sig.Kind)
	fmt.Fprintf(&sb, "Signal time: %s\n", fmtTime(sig.Time))
	fmt.Fprintf(&sb, "Timeframe:   %s\n\n", interval)
	fmt.Fprintf(&sb, "Price:       $%.2f\n", sig.Price)
	fmt.Fprintf(&sb, "RSI:         %.2f\n", sig.RSI)
	if reading.EMAReady {
		fmt.Fprintf(&sb, "EMA short:   $%.2f\n", reading.EMAShort)
		fmt.Fprintf(&sb, "EMA long:    $%.2f\n", reading.EMALong)
	}
	if sig.TargetPrice != nil {
		fmt.Fprintf(&sb, "\nTarget:      $%.2f\n", *sig.TargetPrice)
	}

	return sb.String()
}

// formatSummarySubject builds the subject line for the hourly rollup.
func formatSummarySubject(symbol string, summary domain.SessionSummary) string {
	if !summary.HasActivity() {
		return fmt.Sprintf("%s Hourly Update: No trades", symbol)
	}
	return fmt.Sprintf("%s Hourly Update: %d signal(s)", symbol, len(summary.Signals))
}

// formatSummaryBody builds the plain-text body for the hourly rollup.
// A window without signals still gets an explicit notice; absence of
// activity is itself meaningful operational information.
func formatSummaryBody(symbol string, summary domain.SessionSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s Hourly Update\n\n", symbol)
	fmt.Fprintf(&sb, "Window: %s -> %s\n\n", fmtTime(summary.WindowStart), fmtTime(summary.WindowEnd))

	if !summary.HasActivity() {
		sb.WriteString("No BUY/SELL signals this hour.\n")
	} else {
		fmt.Fprintf(&sb, "Total signals: %d (BUY: %d, SELL: %d)\n\n",
			len(summary.Signals), summary.BuyCount, summary.SellCount)
		for _, sig := range summary.Signals {
			sb.WriteString(formatSignalLine(sig))
		}
		sb.WriteString("\n")
	}

	if summary.High > 0 || summary.Low > 0 {
		fmt.Fprintf(&sb, "Hour range: $%.2f - $%.2f\n", summary.Low, summary.High)
	}
	fmt.Fprintf(&sb, "Net trend: %s\n", summary.NetTrend)

	return sb.String()
}

// formatDigestBody builds the plain-text body for the standalone digest
// command, which reads the last hour's signals from the signal log.
func formatDigestBody(symbol string, signals []domain.Signal, from, to time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s Hourly Update\n\n", symbol)
	fmt.Fprintf(&sb, "Window: %s -> %s\n\n", fmtTime(from), fmtTime(to))

	if len(signals) == 0 {
		sb.WriteString("No BUY/SELL signals in the last hour.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Total signals: %d\n\n", len(signals))
	for _, sig := range signals {
		sb.WriteString(formatSignalLine(sig))
	}

	return sb.String()
}

func formatSignalLine(sig domain.Signal) string {
	line := fmt.Sprintf("- %s | %s @ $%.2f | RSI %.1f",
		sig.Time.UTC().Format("15:04:05"), sig.Kind, sig.Price, sig.RSI)
	if sig.TargetPrice != nil {
		line += fmt.Sprintf(" | Target $%.2f", *sig.TargetPrice)
	}
	return line + "\n"
}
