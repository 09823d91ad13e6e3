package main

import (
	_ "time/tzdata"

	"github.com/D0mbrowski/Site-Camping/cmd"
)

func main() {
	cmd.Execute()
}
