// Command factorygen builds and inspects constructor-based object factories.
//
//	factorygen dump warehouse.Order
//	factorygen check --strict
//	echo '{"product_id":1,"qty":2,"price":"250"}' | factorygen convert store.CartLine warehouse.OrderItem
package main

import (
	"os"

	"objectfactory/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
