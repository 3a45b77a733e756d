package nutrilink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JacobDiB/NutriLink/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	searchRefresh bool
	searchJSON    bool
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search foods on the FatSecret platform",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searcher, err := newSearcher()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		return withDB(cmd, func(gdb *gorm.DB) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LookupTimeout)
			defer cancel()
			res, err := service.SearchFoods(ctx, gdb, searcher, query, service.SearchOptions{TTL: cfg.SearchCacheTTL, Refresh: searchRefresh})
			if err != nil {
				return err
			}
			if searchLimit > 0 && len(res.Foods) > searchLimit {
				res.Foods = res.Foods[:searchLimit]
			}
			if searchJSON {
				return printJSON(cmd, res)
			}
			source := "live"
			if res.Cached {
				source = "cache"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Results for %q (%s, %d foods)\n", res.Query, source, len(res.Foods))
			for i, f := range res.Foods {
				name := f.Name
				if f.Brand != "" {
					name += " (" + f.Brand + ")"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s [%s]\n", i+1, name, f.ID)
				for j, s := range f.Servings {
					fmt.Fprintf(cmd.OutOrStdout(), "   %d) %s: %s kcal | P %sg | C %sg | F %sg\n", j+1, s.Description, nutrient(s.Calories), nutrient(s.Protein), nutrient(s.Carbs), nutrient(s.Fat))
				}
			}
			return nil
		})
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and purge the food lookup cache",
}

var (
	cacheQuery   string
	cacheLimit   int
	cacheAll     bool
	cacheExpired bool
)

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			items, err := service.ListSearchCache(gdb, cacheQuery, cacheLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PROVIDER\tQUERY\tRESULTS\tFETCHED\tEXPIRES")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n", it.Provider, it.Query, it.Results, it.FetchedAt.Format(time.RFC3339), it.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(gdb *gorm.DB) error {
			n, err := service.PurgeSearchCache(gdb, cacheQuery, cacheAll, cacheExpired, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached searches\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)

	searchCmd.Flags().BoolVar(&searchRefresh, "refresh", false, "Bypass the lookup cache")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output JSON")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Show at most N foods")

	cacheListCmd.Flags().StringVar(&cacheQuery, "query", "", "Only this query")
	cacheListCmd.Flags().IntVar(&cacheLimit, "limit", 100, "Max rows")
	cachePurgeCmd.Flags().StringVar(&cacheQuery, "query", "", "Purge one query")
	cachePurgeCmd.Flags().BoolVar(&cacheAll, "all", false, "Purge everything")
	cachePurgeCmd.Flags().BoolVar(&cacheExpired, "expired", false, "Purge expired entries")
}
