package main

import cmd "github.com/rohmanhakim/billtext/internal/cli"

func main() {
	cmd.Execute()
}
