package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := 5.0
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec2Cross(t *testing.T) {
	if got := (Vec2{1, 0}).Cross(Vec2{0, 1}); got != 1 {
		t.Errorf("Vec2.Cross() = %v, want 1", got)
	}
	if got := (Vec2{0, 1}).Cross(Vec2{1, 0}); got != -1 {
		t.Errorf("Vec2.Cross() = %v, want -1", got)
	}
}

func TestCentroid(t *testing.T) {
	got := Centroid(Vec2{0, 0}, Vec2{3, 0}, Vec2{0, 3})
	if !got.ApproxEqual(Vec2{1, 1}, 1e-12) {
		t.Errorf("Centroid() = %v, want (1,1)", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Round(t *testing.T) {
	got := Vec3{1.4, -0.6, 2}.Round()
	want := [3]int{1, -1, 2}
	if got != want {
		t.Errorf("Vec3.Round() = %v, want %v", got, want)
	}
	if l := (Vec3{2, 3, 6}).Length(); l != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", l)
	}
}
