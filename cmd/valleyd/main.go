package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// version is stamped by the release build; local builds report "dev"
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env string

	root := &cobra.Command{
		Use:   "valleyd",
		Short: "DeFi Valley cross-chain transaction tracker",
		Long: `valleyd tracks DeFi Valley farming transactions from the wallet prompt,
across the Axelar bridge, to their final settlement. It serves the game
client a local HTTP and websocket gateway over the tracked records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if env != "" {
				os.Setenv("VALLEY_ENV", env)
			}
		},
	}
	root.PersistentFlags().StringVar(&env, "env", "", "environment to run as (development, production or test)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the valleyd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("valleyd %s\n", version)
		},
	}
}
