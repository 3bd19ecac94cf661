package driver

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"episode",
	"step",
	"date",
	"action",
	"price_ulsp",
	"price_ulsd",
	"reward",
	"cum_reward",
	"terminated",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedger(f, ledger); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}
	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Episode),
			strconv.Itoa(r.Step),
			fmtDate(r.Date),
			r.Action.String(),
			fmtFloat(r.PriceULSP),
			fmtFloat(r.PriceULSD),
			fmtFloat(r.Reward),
			fmtFloat(r.CumReward),
			strconv.FormatBool(r.Terminated),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
