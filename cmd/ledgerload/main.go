package main

import (
	"github.com/ledgerload/ledgerload/cmd/ledgerload/cmd"
	"github.com/ledgerload/ledgerload/internal/common/logging"
)

func main() {
	logging.ConfigureCliLogging()
	cmd.Execute()
}
