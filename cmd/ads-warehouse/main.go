package main

import "github.com/parfumelite/ads-warehouse/internal/cli"

func main() {
	cli.Execute()
}
