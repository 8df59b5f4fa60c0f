package env

import (
	"math"
	"time"
)

// Generator maps a ground position and a timestamp to a fixed batch of four
// samples: temperature, solar irradiance proxy, sea surface temperature (or
// the land sentinel), and a fire-count proxy. The skeleton is deterministic
// (time-of-day and latitude models); only the Noise terms vary.
type Generator struct {
	noise Noise
}

// NewGenerator creates a Generator. A nil noise source falls back to the
// default random one.
func NewGenerator(noise Noise) *Generator {
	if noise == nil {
		noise = NewNoise()
	}
	return &Generator{noise: noise}
}

// IsOcean reports whether the position is treated as ocean. The formula is a
// deliberately coarse proxy, kept for parity with the historical data; it is
// not geography.
func IsOcean(lat, lon float64) bool {
	return math.Abs(lat) < 60 && math.Mod(math.Abs(lon), 180) < 100
}

// Generate produces exactly four samples sharing the given timestamp and
// position, in fixed parameter order.
func (g *Generator) Generate(lat, lon float64, now time.Time) []Sample {
	now = now.UTC()
	secs := float64(now.Hour()*3600 + now.Minute()*60 + now.Second())

	// Diurnal cycle over a full day, [-1, 1]; latitude attenuation, 1 at
	// the equator and 0 at the poles.
	diurnal := math.Sin(2 * math.Pi * secs / 86400)
	latFactor := math.Cos(lat * math.Pi / 180)

	temp := round2(15 + 10*latFactor + 8*diurnal + g.noise.Uniform(-1.5, 1.5))

	solarBase := math.Max(0, 1000*math.Max(0, diurnal)*latFactor)
	solar := round2(solarBase + g.noise.Uniform(-20, 20))

	sst := SentinelNoOcean
	if IsOcean(lat, lon) {
		sst = round2(temp - g.noise.Uniform(0, 5) + 0.5*math.Sin(secs/10000))
	}

	fires := math.Max(0, math.Round(3*latFactor+g.noise.Normal(0, 1)))

	mk := func(src Source, param string, value float64) Sample {
		return Sample{
			Timestamp: now,
			Source:    src,
			Parameter: param,
			Value:     value,
			Latitude:  lat,
			Longitude: lon,
		}
	}

	return []Sample{
		mk(SourcePOWER, ParamTemperature, temp),
		mk(SourcePOWER, ParamSolar, solar),
		mk(SourceOISST, ParamSST, sst),
		mk(SourceFIRMS, ParamFireCount, fires),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
