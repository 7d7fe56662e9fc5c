package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleOnUnitSphere_UnitLength(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	var mean Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		v := SampleOnUnitSphere(sampler.Get2D())
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit vector, got length %f", v.Length())
		}
		mean = mean.Add(v)
	}

	// Uniform distribution is centred on the origin
	mean = mean.Multiply(1.0 / n)
	if mean.Length() > 0.05 {
		t.Errorf("Sample mean too far from origin: %v", mean)
	}
}

func TestSampleOnUnitSphere_Poles(t *testing.T) {
	tests := []struct {
		sample   Vec2
		expected Vec3
	}{
		{NewVec2(0, 0), NewVec3(0, 0, 1)},
		{NewVec2(1, 0.3), NewVec3(0, 0, -1)},
		{NewVec2(0.5, 0), NewVec3(1, 0, 0)},
		{NewVec2(0.5, 0.25), NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		got := SampleOnUnitSphere(tt.sample)
		if got.Subtract(tt.expected).Length() > 1e-9 {
			t.Errorf("SampleOnUnitSphere(%v) = %v, want %v", tt.sample, got, tt.expected)
		}
	}
}

func TestSamplePointInUnitDisk(t *testing.T) {
	sampler := NewSeededSampler(7)

	var meanRadiusSq float64
	const n = 10000
	for i := 0; i < n; i++ {
		p := SamplePointInUnitDisk(sampler.Get2D())
		if p.Z != 0 {
			t.Fatalf("Disk sample should lie in z=0 plane, got %v", p)
		}
		if p.LengthSquared() > 1+1e-9 {
			t.Fatalf("Disk sample outside unit disk: %v", p)
		}
		meanRadiusSq += p.LengthSquared()
	}

	// Uniform in area: E[r²] = 1/2
	meanRadiusSq /= n
	if math.Abs(meanRadiusSq-0.5) > 0.02 {
		t.Errorf("Expected mean squared radius near 0.5, got %f", meanRadiusSq)
	}

	if p := SamplePointInUnitDisk(NewVec2(0, 0.7)); p.Length() != 0 {
		t.Errorf("Zero radius sample should map to origin, got %v", p)
	}
}

func TestSampleSquare(t *testing.T) {
	tests := []struct {
		sample   Vec2
		expected Vec2
	}{
		{NewVec2(0.5, 0.5), NewVec2(0, 0)},
		{NewVec2(0, 0), NewVec2(-0.5, -0.5)},
		{NewVec2(0.75, 0.25), NewVec2(0.25, -0.25)},
	}

	for _, tt := range tests {
		if got := SampleSquare(tt.sample); got != tt.expected {
			t.Errorf("SampleSquare(%v) = %v, want %v", tt.sample, got, tt.expected)
		}
	}
}

func TestSeededSamplerRepeatable(t *testing.T) {
	a, b := NewSeededSampler(99), NewSeededSampler(99)
	for i := 0; i < 100; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatalf("Samplers with equal seeds diverged at draw %d", i)
		}
	}
}
