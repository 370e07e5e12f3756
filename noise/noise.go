// Package noise implements coherent gradient noise primitives in float32
// arithmetic. The 2D Perlin implementation follows the classic formulation
// popularized by Stefan Gustavson's GLSL noise functions so that CPU
// evaluation matches the GLSL sources in glbuild/glsllib lane for lane.
package noise

import "github.com/chewxy/math32"

// Perlin2 returns classic 2D Perlin noise at v. Output is smooth,
// deterministic and lies approximately within [-1, 1].
func Perlin2(x, y float32) float32 {
	ix0 := math32.Floor(x)
	iy0 := math32.Floor(y)
	fx0 := x - ix0
	fy0 := y - iy0
	fx1 := fx0 - 1
	fy1 := fy0 - 1
	ix1 := mod289(ix0 + 1)
	iy1 := mod289(iy0 + 1)
	ix0 = mod289(ix0)
	iy0 = mod289(iy0)

	px0 := permute(ix0)
	px1 := permute(ix1)
	g00x, g00y := gradient(permute(px0 + iy0))
	g10x, g10y := gradient(permute(px1 + iy0))
	g01x, g01y := gradient(permute(px0 + iy1))
	g11x, g11y := gradient(permute(px1 + iy1))

	n00 := g00x*fx0 + g00y*fy0
	n10 := g10x*fx1 + g10y*fy0
	n01 := g01x*fx0 + g01y*fy1
	n11 := g11x*fx1 + g11y*fy1

	u := fade(fx0)
	nx0 := mix(n00, n10, u)
	nx1 := mix(n01, n11, u)
	return 2.3 * mix(nx0, nx1, fade(fy0))
}

// Fractal2 sums octaves of [Perlin2] with the given lacunarity (frequency
// multiplier per octave) and gain (amplitude multiplier per octave).
// Typical values are lacunarity=2, gain=0.5. The result is normalized by
// total amplitude so output stays approximately within [-1, 1].
func Fractal2(x, y float32, octaves int, lacunarity, gain float32) float32 {
	var sum, amp, norm float32 = 0, 1, 0
	for i := 0; i < octaves; i++ {
		sum += amp * Perlin2(x, y)
		norm += amp
		x *= lacunarity
		y *= lacunarity
		amp *= gain
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func mod289(x float32) float32 {
	return x - math32.Floor(x*(1.0/289.0))*289.0
}

// permute is the hash ((34x+1)x) mod 289. Inputs stay below 578 so every
// intermediate is an exactly representable float32 integer.
func permute(x float32) float32 {
	return mod289((x*34.0 + 1.0) * x)
}

// gradient derives a pseudo-random unit-ish gradient from a hash lane,
// normalized with the same Taylor inverse square root the GLSL side uses.
func gradient(h float32) (gx, gy float32) {
	gx = fract(h*(1.0/41.0))*2.0 - 1.0
	gy = math32.Abs(gx) - 0.5
	gx -= math32.Floor(gx + 0.5)
	inv := taylorInvSqrt(gx*gx + gy*gy)
	return gx * inv, gy * inv
}

func taylorInvSqrt(r float32) float32 {
	return 1.79284291400159 - 0.85373472095314*r
}

func fade(t float32) float32 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

func mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}
