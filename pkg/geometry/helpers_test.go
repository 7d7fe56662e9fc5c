package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DummyMaterial for testing; id lets tests tell shapes apart through hit records
type DummyMaterial struct {
	id int
}

func (d *DummyMaterial) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

func assertVecNear(t *testing.T, label string, expected, actual core.Vec3, tolerance float64) {
	t.Helper()
	if math.Abs(expected.X-actual.X) > tolerance ||
		math.Abs(expected.Y-actual.Y) > tolerance ||
		math.Abs(expected.Z-actual.Z) > tolerance {
		t.Errorf("%s: expected %v, got %v", label, expected, actual)
	}
}

// assertNormalFacesRay checks the orientation contract shared by every shape
func assertNormalFacesRay(t *testing.T, ray core.Ray, hit *core.HitRecord) {
	t.Helper()
	if ray.Direction.Dot(hit.Normal) > 0 {
		t.Errorf("Normal %v does not face ray direction %v", hit.Normal, ray.Direction)
	}
	if math.Abs(hit.Normal.Length()-1) > 1e-9 {
		t.Errorf("Normal %v is not unit length", hit.Normal)
	}
}

var defaultRayT = core.NewInterval(0.001, math.Inf(1))
