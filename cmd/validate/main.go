// Command validate snaps a layout JSON file to the construction grid
// and prints its constraint verdict. No network, no database.
package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/archbom/planforge/internal/constraint"
	"github.com/archbom/planforge/internal/layout"
	"github.com/archbom/planforge/internal/snap"
)

// #endregion

// #region main
func main() {
	layoutPath := flag.String("layout", "", "path to a layout JSON file")
	gridMM := flag.Int("grid", 50, "snapping grid pitch in millimeters")
	flag.Parse()

	if *layoutPath == "" {
		fmt.Fprintln(os.Stderr, "usage: validate -layout <file.json> [-grid 50]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*layoutPath)
	if err != nil {
		log.Fatalf("read layout: %v", err)
	}

	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		log.Fatalf("decode layout: %v", err)
	}
	l.ApplyDefaults()
	if err := l.Validate(); err != nil {
		log.Fatalf("layout is structurally invalid: %v", err)
	}

	snapped, err := snap.Layout(l, *gridMM)
	if err != nil {
		log.Fatalf("snap: %v", err)
	}

	verdict := constraint.NewChecker(constraint.DefaultConfig()).Validate(snapped)

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		log.Fatalf("encode verdict: %v", err)
	}
	fmt.Println(string(out))

	if !verdict.Passed {
		os.Exit(1)
	}
}

// #endregion main
