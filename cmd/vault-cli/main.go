package main

import "github.com/pandodao/vault/cmd/vault-cli/cmd"

func main() {
	cmd.Execute()
}
