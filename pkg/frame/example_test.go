package frame_test

import (
	"fmt"

	"github.com/matzehuels/beamforge/pkg/frame"
	"github.com/matzehuels/beamforge/pkg/units"
)

func ExampleFrame_Derive() {
	entry := frame.Identity()
	exit := entry.Derive().
		TranslateX(units.Meters(1.5)).
		TranslateY(units.Meters(-0.25)).
		Frame()

	fmt.Println(exit)
	// Output: (1.5, -0.25, 0; 0 deg)
}

func ExampleAt() {
	f := frame.At(units.Meters(1), units.Meters(2), 0)

	fmt.Println(f.Origin().X, f.Origin().Y)
	// Output: 1 2
}
