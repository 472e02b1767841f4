// Command catalogctl administers a data catalog database.
package main

import "datacatalog/cmd/catalogctl/cmd"

func main() {
	cmd.Execute()
}
