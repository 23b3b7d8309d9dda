package report

import (
	"strconv"

	"poolReport/internal/model"
)

var header = []string{
	"version number",
	"pool address",
	"token0 contract address",
	"token1 contract address",
	"fee tier",
	"amount of token0 in pool",
	"amount of token1 in pool",
	"token0 TVL",
	"token1 TVL",
	"token0/token1",
	"token0 price",
	"token1 price",
}

// Header returns the tabular column names.
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// Record renders a row in Header order. Missing values become empty cells.
func Record(row model.ReportRow) []string {
	return []string{
		strconv.Itoa(int(row.Version)),
		row.PoolAddress,
		row.Token0,
		row.Token1,
		strconv.FormatUint(uint64(row.FeeTier), 10),
		formatFloat(row.Amount0),
		formatFloat(row.Amount1),
		formatOptional(row.Token0TVL),
		formatOptional(row.Token1TVL),
		row.Ratio.String(),
		formatOptional(row.Token0Price),
		formatOptional(row.Token1Price),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
