package main

import "github/chapool/ledger-login/cmd"

func main() {
	cmd.Execute()
}
