// main.go
//
// Entry point for the cpusched CLI; commands live in cmd/.

package main

import (
	"github.com/inference-sim/cpusched/cmd"
)

func main() {
	cmd.Execute()
}
