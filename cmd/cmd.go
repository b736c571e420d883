package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "billed",
	Short: "employee expense report service",
	Long:  `billed lets employees submit expense bills with receipt images and tracks their review status`,
}

func init() {
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
	RootCmd.AddCommand(reportCmd())
}
