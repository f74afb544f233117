package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threefoldtech/piclaim/build"
)

// exit codes, inspired by sysexits.h (rivined/main.go's convention).
const (
	exitCodeGeneral = 1
	exitCodeUsage   = 64
)

// globalConfig is filled out by cobra from command-line flags before
// startDaemonCmd runs.
var globalConfig daemonFlags

// daemonFlags holds the flag-overridable subset of config.Config. Every
// other setting (ledger URL, windows, fees, ...) is environment-only per
// config.FromEnv, mirroring the split the teacher draws between cobra
// flags and its rivine-directory-local settings file.
type daemonFlags struct {
	Port          string
	WalletDBPath  string
	BalanceDBPath string
}

// die prints its arguments to stderr, then exits with the default error
// code (rivined/main.go's convention).
func die(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(exitCodeGeneral)
}

func versionCmd(*cobra.Command, []string) {
	fmt.Println("piclaimd v" + build.Version)
}

func main() {
	root := &cobra.Command{
		Use:   os.Args[0],
		Short: "piclaimd v" + build.Version,
		Long:  "piclaimd v" + build.Version + " — a claimable-balance claim scheduler",
		Run:   startDaemonCmd,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information about piclaimd",
		Run:   versionCmd,
	})

	root.Flags().StringVarP(&globalConfig.Port, "port", "p", "", "port to listen on, overrides $PORT")
	root.Flags().StringVarP(&globalConfig.WalletDBPath, "wallet-db", "", "", "path to the wallet bolt database, overrides $WALLET_DB_PATH")
	root.Flags().StringVarP(&globalConfig.BalanceDBPath, "balance-db", "", "", "path to the balance bolt database, overrides $BALANCE_DB_PATH")

	if err := root.Execute(); err != nil {
		os.Exit(exitCodeUsage)
	}
}
