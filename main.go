// Public domain.

package main

import "github.com/solmap/georef/internal/georefprog"

func main() {
	georefprog.Main()
}
