package main

import "github.com/phuchgg/neon-rpg/cmd/nrpg/root"

func main() {
	root.Execute()
}
