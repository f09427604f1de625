package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metakeule/fmtdate"
)

// canonicalDateFormat is the single date representation stored in the
// database, regardless of how the source tree wrote the date.
const canonicalDateFormat = "YYYY-MM-DD"

// NormalizeDate converts a dash-separated date in either day-first
// (DD-MM-YYYY) or year-first (YYYY-MM-DD) order to canonical YYYY-MM-DD.
// The order is guessed from the segments: a four-digit or >1000 leading
// segment means year-first, a trailing one means day-first. Inputs where
// neither rule applies are read day-first, a legacy heuristic that is
// inherently ambiguous for dates like 05-06-2024 and kept as-is.
// An empty input normalizes to empty.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("date %q is not dash-separated into three segments", s)
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("date %q has a non-numeric segment", s)
	}
	last, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("date %q has a non-numeric segment", s)
	}

	yearFirst := len(parts[0]) == 4 || first > 1000
	if !yearFirst && !(len(parts[2]) == 4 || last > 1000) {
		return "", fmt.Errorf("date %q has no four-digit year segment", s)
	}

	var normalized string
	var format string
	if yearFirst {
		normalized = parts[0] + "-" + pad2(parts[1]) + "-" + pad2(parts[2])
		format = "YYYY-MM-DD"
	} else {
		normalized = pad2(parts[0]) + "-" + pad2(parts[1]) + "-" + parts[2]
		format = "DD-MM-YYYY"
	}

	t, err := fmtdate.Parse(format, normalized)
	if err != nil {
		return "", fmt.Errorf("unparseable date %q: %w", s, err)
	}
	return fmtdate.Format(canonicalDateFormat, t), nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
