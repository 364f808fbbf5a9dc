// Package fiscal labels dates with the organisation's financial year, which
// runs April 1 through March 31.
package fiscal

import (
	"fmt"
	"time"
)

// Year returns the "YYYY-YY" financial-year label for t. January through
// March belong to the year that started the previous April: 2024-02-10 is
// "2023-24", 2024-07-01 is "2024-25".
func Year(t time.Time) string {
	y := t.Year()
	if t.Month() < time.April {
		return fmt.Sprintf("%d-%02d", y-1, y%100)
	}
	return fmt.Sprintf("%d-%02d", y, (y+1)%100)
}
