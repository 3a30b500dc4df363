// sepia records every attached display at a fixed interval.
package main

import (
	"fmt"
	"os"

	"github.com/GriffinCanCode/sepia/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
