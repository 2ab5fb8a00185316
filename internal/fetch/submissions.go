package fetch

import (
	"fmt"
	"io"

	"github.com/dtnitsch/codehub/internal/common"
	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/view"
	"github.com/urfave/cli/v2"
)

// SubmissionsAction lists the consolidated submissions through the status,
// search and pagination filters.
func SubmissionsAction(c *cli.Context) error {
	statuses, err := view.ParseStatuses(c.String("status"))
	if err != nil {
		return err
	}

	rt, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := computeStats(c, rt); err != nil {
		return err
	}

	// Icons are decoration; a missing mapping does not fail the listing
	ctx, cancel := common.Context(c)
	defer cancel()
	icons, err := rt.Manager.FetchImageMapping(ctx)
	if err != nil {
		rt.Logger.Warn("image mapping unavailable", "error", err)
	}

	pageSize := rt.Config.View.PageSize
	if c.IsSet("page-size") {
		pageSize = c.Int("page-size")
	}

	result := view.Apply(rt.Manager.Store().Submissions(), view.Query{
		Statuses: statuses,
		Search:   c.String("search"),
		Page:     c.Int("page"),
		PageSize: pageSize,
	})

	return common.Render(c, result, func(w io.Writer) error {
		printSubmissions(w, result.Items, icons)
		fmt.Fprintf(w, "\nPage %d of %d (%s matching submissions)\n",
			result.Page, result.MaxPage, common.Count(result.Total))
		return nil
	})
}

func printSubmissions(w io.Writer, subs []models.Submission, icons models.ImageMapping) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "No submissions found")
		return
	}

	fmt.Fprintf(w, "%-40s %-14s %-8s %-22s %s\n", "Title", "Language", "Level", "Status", "Icon")
	common.Rule(w, 100)
	for _, s := range subs {
		fmt.Fprintf(w, "%-40s %-14s %-8s %-22s %s\n",
			common.Truncate(s.Title, 40),
			common.Truncate(s.Language, 14),
			s.Metadata.Level,
			s.StatusCode,
			icons[s.Language],
		)
	}
}
