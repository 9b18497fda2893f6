// Package main is the entry point for the Consult-X Knowledge Service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/consult-x/internal/knowledge"
)

func main() {
	knowledge.NewApp().Run()
}
