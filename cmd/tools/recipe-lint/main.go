// cmd/tools/recipe-lint/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"compliance-copilot/internal/engine/recipes"
)

func main() {
	path := flag.String("path", "configs/recipes.yaml", "Path to recipe catalog file")
	verbose := flag.Bool("v", false, "Print every recipe after validation")
	flag.Parse()

	catalog, err := recipes.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recipe-lint: %s: %v\n", *path, err)
		os.Exit(1)
	}

	all := catalog.All()
	warnings := 0

	for _, r := range all {
		if !r.Intent.IsKnown() {
			fmt.Printf("WARN  %s: intent %q is not in the intent catalog\n", r.ID, r.Intent)
			warnings++
		}
		if len(r.RequiredSlots) == 0 {
			fmt.Printf("WARN  %s: no required slots, submissions will be ready immediately\n", r.ID)
			warnings++
		}
		for _, slot := range r.RequiredSlots {
			if !catalog.HasQuestion(slot) {
				fmt.Printf("WARN  %s: no question template for slot %q, the generic prompt applies\n", r.ID, slot)
				warnings++
			}
		}
		if *verbose {
			fmt.Printf("OK    %s (%s): slots=%v citations=%v\n", r.ID, r.Intent, r.RequiredSlots, r.Citations)
		}
	}

	fmt.Printf("recipe-lint: %d recipes valid, %d warnings\n", len(all), warnings)
	if warnings > 0 {
		os.Exit(2)
	}
}
