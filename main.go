package main

import (
	cmd "github.com/marcuszucareli/house-price-app/cmd/housepricer"
)

func main() {
	cmd.Execute()
}
