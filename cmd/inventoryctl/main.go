// Command inventoryctl is the administrative tool for the inventory backend.
package main

import "github.com/atinyakov/inventory/cmd/inventoryctl/cmd"

func main() {
	cmd.Execute()
}
