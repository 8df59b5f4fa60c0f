package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/env"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
)

// One-shot pipeline check: fetch the current position, run the generator
// against it, print both. Useful for verifying connectivity and sample
// shapes without starting the server.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fetcher := telemetry.NewFetcher(os.Getenv("ISSTRACKER_TELEMETRY_URL"), os.Getenv("ISSTRACKER_POSITIONS_URL"), 8*time.Second)

	pos, err := fetcher.Fetch(ctx)
	if err != nil {
		fmt.Println("ERROR fetching position:", err)
		os.Exit(1)
	}
	fmt.Printf("Position: lat=%.4f lon=%.4f alt=%.1fkm vel=%.0fkm/h at %s\n",
		pos.Latitude, pos.Longitude, pos.AltitudeKm, pos.VelocityKmh,
		pos.Timestamp.Format(time.RFC3339))

	gen := env.NewGenerator(nil)
	for _, s := range gen.Generate(pos.Latitude, pos.Longitude, time.Now()) {
		fmt.Printf("  %-6s %-18s %10.2f\n", s.Source, s.Parameter, s.Value)
	}

	fmt.Printf("Ocean at position: %v\n", env.IsOcean(pos.Latitude, pos.Longitude))
}
