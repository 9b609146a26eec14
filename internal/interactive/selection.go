package interactive

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ExpandSelection resolves a comma-separated list of 1-based indices and
// inclusive ranges against a result list of size n.
//
// The result is ascending and free of duplicates. Pieces that cannot be
// parsed yield ErrMalformedRange and indices outside 1..n yield
// ErrOutOfRange; neither prevents the other pieces from resolving.
//
//	ExpandSelection("3-5,4,1", 10) // [1 3 4 5], no errors
//	ExpandSelection("2,12", 10)    // [2], [ErrOutOfRange]
func ExpandSelection(input string, n int) ([]int, []error) {
	var (
		indices []int
		errs    []error
	)

	for _, piece := range strings.Split(input, ",") {
		piece = strings.TrimSpace(piece)
		start, end, err := parsePiece(piece)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		first, last := max(start, 1), min(end, n)
		for i := first; i <= last; i++ {
			indices = append(indices, i)
		}
		if start < 1 || end > n {
			errs = append(errs, outOfRange(piece, n))
		}
	}

	indices = lo.Uniq(indices)
	sort.Ints(indices)
	return indices, errs
}

var piecePattern = regexp.MustCompile(`^(-?\d+)(?:\s*-\s*(-?\d+))?$`)

// parsePiece parses "7" or "3-5". Well-formed numbers outside any
// plausible range are returned as-is and rejected by the bounds check.
func parsePiece(piece string) (int, int, error) {
	if piece == "" {
		return 0, 0, fmt.Errorf("%w: empty element", ErrMalformedRange)
	}

	m := piecePattern.FindStringSubmatch(piece)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedRange, piece)
	}
	start := parseBound(m[1])
	if m[2] == "" {
		return start, start, nil
	}

	end := parseBound(m[2])
	if start > end {
		return 0, 0, fmt.Errorf("%w: %q starts after it ends", ErrMalformedRange, piece)
	}
	return start, end, nil
}

// parseBound converts a string matched by piecePattern, saturating on
// overflow.
func parseBound(s string) int {
	v, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return v
}

func outOfRange(piece string, n int) error {
	if n == 0 {
		return fmt.Errorf("%w: %s (no results)", ErrOutOfRange, piece)
	}
	return fmt.Errorf("%w: %s (choose 1-%d)", ErrOutOfRange, piece, n)
}
