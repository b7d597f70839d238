package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
	"github.com/kailas-cloud/schoolkeuze/internal/usecase/geocode"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
)

var searchOpts struct {
	dataset          string
	q                string
	concept          string
	postalCode       string
	levels           []string
	lat, lon         float64
	radiusKm         float64
	maxMinutes       float64
	originPostalCode string
	take             float64
	favorites        []string
	asJSON           bool
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a filter query against the configured school provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider, closeFn, err := openProvider(ctx, searchOpts.dataset)
		if err != nil {
			return err
		}
		defer closeFn()

		policy, err := level.ParsePolicy(cfg.Search.LevelPolicy)
		if err != nil {
			return err
		}

		var resolver searchuc.Resolver
		if searchOpts.originPostalCode != "" {
			resolver = geocode.New(newNominatim())
		}
		svc := searchuc.New(searchuc.Instrument(provider, log), resolver, searchuc.Config{
			Policy:          policy,
			FetchMultiplier: cfg.Search.FetchMultiplier,
			MaxCandidates:   cfg.Search.MaxCandidates,
		})

		q := query.New(searchParams(cmd.Flags()), query.Limits{
			DefaultTake: cfg.Search.DefaultTake,
			MaxTake:     cfg.Search.MaxTake,
		})
		res, err := svc.Search(ctx, q)
		if err != nil {
			return err
		}
		items := res.Items
		if len(searchOpts.favorites) > 0 {
			items = svc.SortForDisplay(items, searchOpts.favorites)
		}

		if searchOpts.asJSON {
			return writeHitsJSON(cmd, items, res.Warnings)
		}
		return writeHitsTable(cmd, items, res.Warnings)
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchOpts.dataset, "dataset", "", "dataset file for the file driver")
	f.StringVarP(&searchOpts.q, "query", "q", "", "name or BRIN substring")
	f.StringVar(&searchOpts.concept, "concept", "", "concept substring")
	f.StringVar(&searchOpts.postalCode, "postal-code", "", "postal code prefix")
	f.StringSliceVarP(&searchOpts.levels, "levels", "l", nil, "levels, comma-separated")
	f.Float64Var(&searchOpts.lat, "lat", 0, "origin latitude")
	f.Float64Var(&searchOpts.lon, "lon", 0, "origin longitude")
	f.Float64Var(&searchOpts.radiusKm, "radius-km", 0, "maximum distance in km")
	f.Float64Var(&searchOpts.maxMinutes, "max-minutes", 0, "maximum cycling time in minutes")
	f.StringVar(&searchOpts.originPostalCode, "origin-postal-code", "", "origin postal code, geocoded")
	f.Float64Var(&searchOpts.take, "take", 0, "result cap")
	f.StringSliceVar(&searchOpts.favorites, "favorites", nil, "favorite school ids, listed first")
	f.BoolVar(&searchOpts.asJSON, "json", false, "print JSON instead of a table")
}

// searchParams maps the flags to filter parameters. Unset flags stay absent.
func searchParams(flags *pflag.FlagSet) query.Params {
	p := query.Params{
		Q:                searchOpts.q,
		Concept:          searchOpts.concept,
		PostalCode:       searchOpts.postalCode,
		Levels:           searchOpts.levels,
		OriginPostalCode: searchOpts.originPostalCode,
	}
	set := func(name string, v float64) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}
	p.Lat = set("lat", searchOpts.lat)
	p.Lon = set("lon", searchOpts.lon)
	p.RadiusKm = set("radius-km", searchOpts.radiusKm)
	p.MaxMinutes = set("max-minutes", searchOpts.maxMinutes)
	p.Take = set("take", searchOpts.take)
	return p
}

type hitJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Levels      []string `json:"levels"`
	PostalCode  string   `json:"postalCode,omitempty"`
	DistanceKm  *float64 `json:"distanceKm,omitempty"`
	BikeMinutes *int     `json:"bikeMinutes,omitempty"`
	PassRate    string   `json:"passRate"`
}

func toHitJSON(h *searchuc.Hit) hitJSON {
	_, rate, ok := h.School.Exams().PreferredPassRate()
	return hitJSON{
		ID:          h.School.ID(),
		Name:        h.School.Name(),
		Levels:      level.Strings(h.School.Levels()),
		PostalCode:  h.School.PostalCode(),
		DistanceKm:  h.DistanceKm,
		BikeMinutes: h.BikeMinutes,
		PassRate:    school.FormatPassRate(rate, ok),
	}
}

func writeHitsJSON(cmd *cobra.Command, hits []searchuc.Hit, warnings []string) error {
	out := struct {
		Items    []hitJSON `json:"items"`
		Warnings []string  `json:"warnings"`
	}{Items: make([]hitJSON, len(hits)), Warnings: warnings}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	for i := range hits {
		out.Items[i] = toHitJSON(&hits[i])
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeHitsTable(cmd *cobra.Command, hits []searchuc.Hit, warnings []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLEVELS\tPOSTAL\tKM\tMIN\tPASS")
	for i := range hits {
		h := toHitJSON(&hits[i])
		km, minutes := "-", "-"
		if h.DistanceKm != nil {
			km = fmt.Sprintf("%.1f", *h.DistanceKm)
		}
		if h.BikeMinutes != nil {
			minutes = fmt.Sprint(*h.BikeMinutes)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			h.ID, h.Name, strings.Join(h.Levels, ","), h.PostalCode, km, minutes, h.PassRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, warning := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d schools\n", len(hits))
	return err
}
