package renderer

import (
	"os"
	"time"
)

// Now is the current time used in reports.
// It has to be overridable so that documentation scenarios are stable.
func Now() time.Time {
	if os.Getenv("TFSA_TESTING_NOW") != "" {
		t, err := time.Parse("2006-01-02 15:04:05", os.Getenv("TFSA_TESTING_NOW"))
		if err != nil {
			panic(err)
		}
		return t
	}
	return time.Now()
}
