// Command assetdesk lists, edits and exports the asset-tracking screens from
// the terminal.
package main

import (
	"fmt"
	"os"
)

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, loadConfig, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
		return
	}
	exitFunc(0)
}
