// Command ngjit compiles template catalogues at runtime: it prints the generated programs or
// renders a component.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
