// Command beconnected runs the BeConnected web app.
//
// Configure it through environment variables or a .env file; cf. package ranger.
package main

import (
	"log"

	"github.com/beconnected/beconnected/ranger"
)

func main() {
	rng, err := ranger.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := rng.Guide(); err != nil {
		rng.Logger().Fatal(err.Error(), nil)
	}
}
