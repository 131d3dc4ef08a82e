package main

import "github.com/odyssey-erp/kpir/cmd/kpirctl/cli"

func main() {
	cli.Execute()
}
