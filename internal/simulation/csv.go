package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

var ledgerHeader = []string{
	"period",
	"year",
	"group",
	"option",
	"good",
	"share",
	"sector_share",
	"share_weight",
	"price",
	"fuel_price",
	"output",
	"input",
	"fixed",
	"calibrated",
	"cap_limited",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteLedger(f, ledger)
}

// WriteLedger writes the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Period),
			strconv.Itoa(r.Year),
			r.Group,
			r.Option,
			r.Good,
			fmtFloat(r.Share),
			fmtFloat(r.SectorShare),
			fmtFloat(r.ShareWeight),
			fmtFloat(r.Price),
			fmtFloat(r.FuelPrice),
			fmtFloat(r.Output),
			fmtFloat(r.Input),
			strconv.FormatBool(r.Fixed),
			strconv.FormatBool(r.Calibrated),
			strconv.FormatBool(r.CapLimited),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
