// Package main provides the ispadmin binary entry point: the client
// registration and administrative back-office service for an internet
// service provider, built around an offline-tolerant synchronized storage
// core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "ispadmin",
		Short:         "ISP client registration and back-office service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
