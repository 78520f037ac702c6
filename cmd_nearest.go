package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contact-radar/internal/calculator"
	"contact-radar/internal/excel"
	"contact-radar/internal/models"
	"contact-radar/internal/textutil"
)

var (
	nearestLat   float64
	nearestLon   float64
	nearestLimit int
	nearestOut   string
)

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Rank directory contacts by distance from a position",
	Example: `  contact-radar nearest -w contacts.xlsx --lat 40.7128 --lon -74.0060
  contact-radar nearest -w contacts.xlsx --lat 41 --lon 29 --limit 10 --out nearest.xlsx`,
	RunE: runNearest,
}

func init() {
	nearestCmd.Flags().Float64Var(&nearestLat, "lat", 0, "origin latitude")
	nearestCmd.Flags().Float64Var(&nearestLon, "lon", 0, "origin longitude")
	nearestCmd.Flags().IntVar(&nearestLimit, "limit", 0, "number of contacts (default from config)")
	nearestCmd.Flags().StringVarP(&nearestOut, "out", "o", "", "write the ranking to this workbook")
	_ = nearestCmd.MarkFlagRequired("lat")
	_ = nearestCmd.MarkFlagRequired("lon")
}

func runNearest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	dir, err := loadDirectory(cfg, logger)
	if err != nil {
		return err
	}

	limit := nearestLimit
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Ranking.DefaultLimit
	}
	ranked, err := calculator.RankNearest(models.Coordinate{Lat: nearestLat, Lon: nearestLon}, dir.Contacts(), limit)
	if err != nil {
		return err
	}

	if nearestOut != "" {
		if err := excel.WriteRanked(nearestOut, ranked, excel.RankedSheet); err != nil {
			return fmt.Errorf("write %s: %w", nearestOut, err)
		}
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPHONE\tCITY\tKM")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n", r.Rank+1, r.Name, textutil.FormatPhone(r.Phone), r.City, r.DistanceKm)
	}
	return tw.Flush()
}
