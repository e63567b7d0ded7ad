package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime los reports en el modo configurado.
func (c *Console) Notify(_ context.Context, reports []domain.WalletReport) error {
	if len(reports) == 0 {
		fmt.Fprintf(c.out, "[%s] no wallets processed\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printTable(reports)
	}
	c.printSummary(reports)
	return nil
}

// printTable imprime el report completo por wallet.
func (c *Console) printTable(reports []domain.WalletReport) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Wallet", "Trades", "Realized", "Unrlzd", "ROI%", "Sharpe", "DD", "WR", "p-val", "Kelly", "Flags")

	for i, r := range reports {
		if r.Error != "" {
			table.Append(
				fmt.Sprintf("%d", i+1), shortAddr(r.Wallet),
				"-", "-", "-", "-", "-", "-", "-", "-", "-",
				"FAILED: "+truncate(r.Error, 30),
			)
			continue
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			shortAddr(r.Wallet),
			fmt.Sprintf("%d", r.TradesSimulated),
			fmt.Sprintf("$%.2f", r.RealizedPnL),
			fmt.Sprintf("$%.2f", r.UnrealizedPnL),
			fmt.Sprintf("%.1f%%", r.ROIPercent),
			fmtNullable(r.Metrics.Sharpe, "%.2f"),
			fmt.Sprintf("%.1f%%", r.Metrics.MaxDrawdown*100),
			fmt.Sprintf("%.0f%%", r.Metrics.WinRate*100),
			fmtNullable(r.Metrics.PValue, "%.4f"),
			fmt.Sprintf("%.2f", r.Metrics.KellyFraction),
			flagsLabel(r),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Sharpe/p-val '-' = muestra insuficiente | DD = max drawdown sobre pico")
	fmt.Fprintln(c.out, "  Flags: * significativo | ! drawdown alto | ?N posiciones sin precio")
}

// printSummary imprime los agregados del batch y el top 5.
func (c *Console) printSummary(reports []domain.WalletReport) {
	var valid []domain.WalletReport
	for _, r := range reports {
		if r.Valid() {
			valid = append(valid, r)
		}
	}

	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d wallets — %d con datos válidos\n", now, len(reports), len(valid))

	if len(valid) == 0 {
		return
	}

	var sumROI, sumWR, sumSharpe float64
	sharpeN, significant := 0, 0
	for _, r := range valid {
		sumROI += r.ROIPercent
		sumWR += r.Metrics.WinRate
		if r.Metrics.Sharpe != nil {
			sumSharpe += *r.Metrics.Sharpe
			sharpeN++
		}
		if r.StatisticallySignificant {
			significant++
		}
	}

	fmt.Fprintf(c.out, "  Avg ROI: %.2f%%  Avg win rate: %.1f%%\n",
		sumROI/float64(len(valid)), sumWR/float64(len(valid))*100)
	if sharpeN > 0 {
		fmt.Fprintf(c.out, "  Avg Sharpe: %.2f (%d wallets con muestra suficiente)\n",
			sumSharpe/float64(sharpeN), sharpeN)
	}
	fmt.Fprintf(c.out, "  Significativos: %d/%d\n", significant, len(valid))

	top := valid
	if len(top) > 5 {
		top = valid[:5]
	}
	fmt.Fprintln(c.out, "\n  Top performers:")
	for i, r := range top {
		marker := ""
		if r.StatisticallySignificant {
			marker = "*"
		}
		fmt.Fprintf(c.out, "  %d. %s ROI: %.2f%% WR: %.0f%% Kelly: %.2f%s\n",
			i+1, shortAddr(r.Wallet), r.ROIPercent, r.Metrics.WinRate*100,
			r.Metrics.KellyFraction, marker)
	}
	fmt.Fprintln(c.out)
}

func flagsLabel(r domain.WalletReport) string {
	var sb strings.Builder
	if r.StatisticallySignificant {
		sb.WriteString("*")
	}
	if r.HighDrawdownRisk {
		sb.WriteString("!")
	}
	if r.PricelessPositions > 0 {
		fmt.Fprintf(&sb, "?%d", r.PricelessPositions)
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func fmtNullable(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func shortAddr(wallet string) string {
	if len(wallet) <= 12 {
		return wallet
	}
	return wallet[:12] + "..."
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
