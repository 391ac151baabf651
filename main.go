// =============================================================================
// Category Launch Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   catgen generate   - Convert a category table into Kotlin fixtures
//   catgen validate   - Check the configuration and a category table
//   catgen serve      - Run the upload service
//   catgen version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, mapping, generation and the web service
//   - pkg/           : Shared file and summary utilities
//   - configs/       : Example configuration document
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/category-launch-generator/cmd"
)

func main() {
	cmd.Execute()
}
