// proc-receive is a git proc-receive hook that diverts every push into a
// numbered integration branch (refs/heads/for/<base>/pr<N>).
package main

import (
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
