// Command entityaxis manages a product catalog through the generic CRUD
// services of this module.
package main

import "github.com/mesh-intelligence/entityaxis/internal/cli"

func main() {
	cli.Execute()
}
