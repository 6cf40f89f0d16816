package anomalycnn

import (
	"errors"
	"testing"
)

func TestCenterMask(t *testing.T) {
	testCases := []struct {
		height, width, centerH, centerW int
		yStart, xStart                  int
	}{
		{128, 128, 64, 64, 32, 32},
		{10, 10, 3, 3, 4, 4},
		{9, 7, 2, 5, 3, 1},
		{5, 5, 5, 5, 0, 0},
		{4, 6, 1, 1, 2, 3},
	}
	for _, tc := range testCases {
		m, err := CenterMask(tc.height, tc.width, tc.centerH, tc.centerW)
		if err != nil {
			t.Fatalf("%+v: %v", tc, err)
		}
		if len(m.Data) != tc.height*tc.width {
			t.Fatalf("%+v: mask has %d values", tc, len(m.Data))
		}
		if got := m.Ones(); got != tc.centerH*tc.centerW {
			t.Errorf("%+v: expected %d ones, got %d", tc, tc.centerH*tc.centerW, got)
		}
		for y := 0; y < tc.height; y++ {
			for x := 0; x < tc.width; x++ {
				inside := y >= tc.yStart && y < tc.yStart+tc.centerH && x >= tc.xStart && x < tc.xStart+tc.centerW
				want := float32(0)
				if inside {
					want = 1
				}
				if got := m.At(y, x); got != want {
					t.Errorf("%+v: mask(%d, %d)=%g, wanted %g", tc, y, x, got, want)
				}
			}
		}
	}
}

func TestCenterMaskErrors(t *testing.T) {
	if _, err := CenterMask(8, 8, 0, 2); !errors.Is(err, ErrInvalidCenterSize) {
		t.Errorf("expected ErrInvalidCenterSize, got %v", err)
	}
	if _, err := CenterMask(8, 8, 9, 2); !errors.Is(err, ErrInvalidCenterSize) {
		t.Errorf("expected ErrInvalidCenterSize, got %v", err)
	}
	if _, err := CenterMask(0, 8, 1, 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("expected ErrInvalidShape, got %v", err)
	}
}

func TestMaskInverse(t *testing.T) {
	m, err := CenterMask(6, 6, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	inv := m.Inverse()
	if got := inv.Ones(); got != 36-8 {
		t.Errorf("expected %d ones in the inverse, got %d", 36-8, got)
	}
	for i := range m.Data {
		if m.Data[i]+inv.Data[i] != 1 {
			t.Fatalf("mask and inverse must add to 1 at %d", i)
		}
	}
}
