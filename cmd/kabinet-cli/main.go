package main

import (
	"kabinet-assist/cmd/kabinet-cli/commands"
	"kabinet-assist/pkg/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
