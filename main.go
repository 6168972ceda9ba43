package main

import (
	"log"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title                  Book Offers API
// @version                1.0
// @description            Finds where a book can be bought, digitally or physically, and at which price.
// @description            Offers are aggregated from Apple Books, Google Play Books and Open Library.
// @contact.name           Jerome Amon
// @license.name           MIT
// @BasePath               /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
