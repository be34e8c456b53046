// Command hindsight is the replay-history trading simulator CLI.
package main

import "github.com/roach88/hindsight/internal/cli"

func main() {
	cli.Execute()
}
