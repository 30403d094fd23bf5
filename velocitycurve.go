package minisynth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	MinVelocity     = 1
	MaxVelocity     = 127
	DefaultVelocity = 100
)

// VelocityCurve maps incoming note velocities 1..127 to the velocities the
// voices are played with.
type VelocityCurve [MaxVelocity + 1]uint8

// LinearVelocityCurve passes every velocity through unchanged.
func LinearVelocityCurve() VelocityCurve {
	var c VelocityCurve
	for i := range c {
		c[i] = uint8(i)
	}
	return c
}

// Map returns the curve value for v. 0 stays 0 (a note off) and values above
// 127 are clamped.
func (c *VelocityCurve) Map(v uint8) uint8 {
	if v > MaxVelocity {
		v = MaxVelocity
	}
	return c[v]
}

// LoadVelocityCurve reads entries of the form "Velocity64: 80". Missing or
// out-of-range entries stay linear. If the data cannot be read the linear
// curve is returned together with the error.
func LoadVelocityCurve(r io.Reader) (VelocityCurve, error) {
	c := LinearVelocityCurve()
	store, err := readStore(r)
	if err != nil {
		return c, fmt.Errorf("cannot read velocity curve: %w", err)
	}
	for i := MinVelocity; i <= MaxVelocity; i++ {
		s, ok := store["Velocity"+strconv.Itoa(i)]
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(s); err == nil && v >= MinVelocity && v <= MaxVelocity {
			c[i] = uint8(v)
		}
	}
	return c, nil
}

// LoadVelocityCurveFile is LoadVelocityCurve on a file; a missing file
// yields the linear curve and ErrNoStorage.
func LoadVelocityCurveFile(path string) (VelocityCurve, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return LinearVelocityCurve(), fmt.Errorf("%w: %v", ErrNoStorage, path)
	}
	if err != nil {
		return LinearVelocityCurve(), fmt.Errorf("cannot open velocity curve: %w", err)
	}
	defer f.Close()
	return LoadVelocityCurve(f)
}
