package fetch

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dtnitsch/codehub/internal/common"
	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/classifier"
	"github.com/dtnitsch/codehub/pkg/dataset"
	"github.com/urfave/cli/v2"
)

// StatsAction computes (or loads) the aggregate statistics.
func StatsAction(c *cli.Context) error {
	rt, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := computeStats(c, rt)
	if err != nil {
		return err
	}

	return common.Render(c, stats, func(w io.Writer) error {
		printStats(w, stats)
		return nil
	})
}

// ImagesAction prints the language to icon mapping.
func ImagesAction(c *cli.Context) error {
	rt, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := common.Context(c)
	defer cancel()

	mapping, err := rt.Manager.FetchImageMapping(ctx)
	if err != nil {
		return fmt.Errorf("image mapping unavailable: %w", err)
	}

	return common.Render(c, mapping, func(w io.Writer) error {
		languages := make([]string, 0, len(mapping))
		for lang := range mapping {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		fmt.Fprintf(w, "%-20s %s\n", "Language", "Icon")
		common.Rule(w, 60)
		for _, lang := range languages {
			fmt.Fprintf(w, "%-20s %s\n", lang, mapping[lang])
		}
		fmt.Fprintf(w, "\nTotal: %s languages\n", common.Count(len(mapping)))
		return nil
	})
}

// PageAction fetches a single submissions page.
func PageAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one page number")
	}
	page, err := strconv.Atoi(c.Args().First())
	if err != nil || page < 1 {
		return fmt.Errorf("invalid page number: %q", c.Args().First())
	}

	rt, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if page > rt.Config.API.Pages {
		return fmt.Errorf("page %d out of range (1-%d)", page, rt.Config.API.Pages)
	}

	ctx, cancel := common.Context(c)
	defer cancel()

	subs, err := rt.Manager.FetchPage(ctx, page)
	if err != nil {
		return err
	}
	classifier.ClassifyAll(subs)

	return common.Render(c, subs, func(w io.Writer) error {
		fmt.Fprintf(w, "Page %d\n", page)
		printSubmissions(w, subs, nil)
		fmt.Fprintf(w, "\nTotal: %s submissions\n", common.Count(len(subs)))

		if rt.DB != nil {
			last, err := rt.DB.GetLastAccess(ctx, "submissions", page)
			if err != nil {
				rt.Logger.Warn("failed to read access log", "page", page, "error", err)
			} else if last != nil {
				printLastAccess(w, last)
			}
		}
		return nil
	})
}

func computeStats(c *cli.Context, rt *common.Runtime) (models.Stats, error) {
	ctx, cancel := common.Context(c)
	defer cancel()

	var stats models.Stats
	var err error
	if c.Bool("refresh") {
		stats, err = rt.Manager.Refresh(ctx)
	} else {
		stats, err = rt.Manager.ComputeStats(ctx)
	}
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats unavailable: %w", err)
	}
	if rt.Manager.State() != dataset.StateDone {
		return models.Stats{}, fmt.Errorf("stats unavailable: aggregation ended in state %s", rt.Manager.State())
	}
	return stats, nil
}
