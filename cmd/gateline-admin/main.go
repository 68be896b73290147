// Package main provides the gateline-admin CLI tool for managing a running
// gateline server through its admin API.
package main

import (
	"os"

	"github.com/gateline/gateline/cmd/gateline-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
