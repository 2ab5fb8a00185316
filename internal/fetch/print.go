package fetch

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dtnitsch/codehub/internal/common"
	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/db"
	"github.com/dustin/go-humanize"
)

var levelOrder = []models.Level{models.LevelEasy, models.LevelMedium, models.LevelHard}

func printStats(w io.Writer, stats models.Stats) {
	fmt.Fprintf(w, "Total submissions: %s\n", common.Count(stats.TotalSubmissions))

	fmt.Fprintf(w, "\nTop %d languages\n", len(stats.TopLanguages))
	common.Rule(w, 40)
	for i, rc := range stats.TopLanguages {
		fmt.Fprintf(w, "%2d. %-25s %s\n", i+1, rc.Name, common.Count(rc.Count))
	}

	fmt.Fprintf(w, "\nMost attempted\n")
	common.Rule(w, 40)
	for i, rc := range stats.TopSubmissions {
		fmt.Fprintf(w, "%2d. %-25s %s\n", i+1, common.Truncate(rc.Name, 25), common.Count(rc.Count))
	}

	fmt.Fprintf(w, "\nSubmissions per level\n")
	common.Rule(w, 40)
	for _, level := range levelOrder {
		fmt.Fprintf(w, "%-29s %s\n", level, common.Count(stats.SubmissionsPerLevel[string(level)]))
	}

	// Levels outside the known set still get reported
	var other []string
	for name := range stats.SubmissionsPerLevel {
		if !models.Level(name).Valid() {
			other = append(other, name)
		}
	}
	sort.Strings(other)
	for _, name := range other {
		label := name
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(w, "%-29s %s\n", label, common.Count(stats.SubmissionsPerLevel[name]))
	}
}

func printLastAccess(w io.Writer, last *db.AccessRecord) {
	outcome := "ok"
	if !last.Success {
		outcome = last.ErrorType
	}
	fmt.Fprintf(w, "Last network fetch: %s (%s, %s)\n",
		humanize.Time(last.AccessedAt),
		outcome,
		time.Duration(last.DurationMs)*time.Millisecond,
	)
}
