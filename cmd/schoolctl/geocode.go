package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/schoolkeuze/internal/transport/nominatim"
	"github.com/kailas-cloud/schoolkeuze/internal/usecase/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <postal-code>",
	Short: "Resolve a postal code to a coordinate through Nominatim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := geocode.New(newNominatim()).Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.6f\t%.6f\n", res.PostalCode, res.Coordinate.Lat, res.Coordinate.Lon)
		return err
	},
}

func newNominatim() *nominatim.Client {
	g := cfg.Geocoder
	return nominatim.New(&nominatim.Config{
		BaseURL:           g.BaseURL,
		UserAgent:         g.UserAgent,
		Suffix:            g.Suffix,
		RequestsPerSecond: g.RequestsPerSecond,
		Burst:             g.Burst,
		Timeout:           time.Duration(g.TimeoutSec) * time.Second,
		Logger:            log,
	})
}
