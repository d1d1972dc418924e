package main

import "github.com/sisedoc/document-tracking/cmd"

func main() {
	cmd.Execute()
}
