package main

import (
	"fmt"
	"os"

	"github.com/teranos/extfn/cmd/extfn/commands"
	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/logger"
)

func main() {
	err := commands.RootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.Hints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
