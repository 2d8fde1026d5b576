package world

import (
	"github.com/ojrac/opensimplex-go"
)

// octaveNoise sums octaves of simplex noise and normalizes to [-1, 1].
type octaveNoise struct {
	noise       opensimplex.Noise
	octaves     int
	persistence float64
	lacunarity  float64
}

func newOctaveNoise(seed int64, octaves int, persistence, lacunarity float64) *octaveNoise {
	return &octaveNoise{
		noise:       opensimplex.New(seed),
		octaves:     octaves,
		persistence: persistence,
		lacunarity:  lacunarity,
	}
}

func (o *octaveNoise) eval2(x, z float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < o.octaves; i++ {
		sum += o.noise.Eval2(x*frequency, z*frequency) * amplitude
		norm += amplitude
		amplitude *= o.persistence
		frequency *= o.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func (o *octaveNoise) eval3(x, y, z float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < o.octaves; i++ {
		sum += o.noise.Eval3(x*frequency, y*frequency, z*frequency) * amplitude
		norm += amplitude
		amplitude *= o.persistence
		frequency *= o.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
