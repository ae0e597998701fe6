package idgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RamXX/rollup/internal/model"
)

// FormatID renders a counter value as a zero-padded work-item ID, e.g.
// FormatID(model.TypeFeature, 7) == "F0007". Counters past 9999 widen
// naturally instead of wrapping.
func FormatID(t model.WorkItemType, n int) string {
	return fmt.Sprintf("%s%04d", t.Prefix(), n)
}

// Split separates an ID into its type prefix and counter value. The
// two-letter "PH" prefix must be matched before the one-letter "P".
func Split(id string) (prefix string, n int, err error) {
	for _, p := range []string{"PH", "P", "E", "F", "S", "B", "T"} {
		if strings.HasPrefix(id, p) {
			digits := id[len(p):]
			if digits == "" {
				break
			}
			v, convErr := strconv.Atoi(digits)
			if convErr != nil || v < 0 {
				break
			}
			return p, v, nil
		}
	}
	return "", 0, fmt.Errorf("%w: malformed work item id %q", model.ErrValidation, id)
}

// TypeOf returns the work-item type an ID's prefix denotes.
func TypeOf(id string) (model.WorkItemType, error) {
	prefix, _, err := Split(id)
	if err != nil {
		return "", err
	}
	for _, t := range model.AllTypes {
		if t.Prefix() == prefix {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown prefix in id %q", model.ErrValidation, id)
}
