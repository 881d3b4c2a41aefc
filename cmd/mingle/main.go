package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mingleapp/mingle/internal/account"
	"github.com/mingleapp/mingle/internal/app"
	"go.uber.org/fx"
)

func main() {
	accountFlag := flag.String("account", "", "account name (overrides config default)")
	flag.Parse()

	accountName := account.Resolve(*accountFlag)
	if err := account.ValidateName(accountName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fx.New(
		app.Module(app.Params{AccountName: accountName}),
		fx.NopLogger,
	).Run()
}
