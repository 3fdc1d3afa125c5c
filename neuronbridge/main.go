// Command neuronbridge generates networks and simulates them on parallel
// engine ranks.
package main

import "github.com/sarchlab/neuronbridge/neuronbridge/cmd"

func main() {
	cmd.Execute()
}
