// Command go2web fetches web pages over raw HTTP/1.1 and searches the web
// from the terminal.
//
//	go2web -u <URL>         # make an HTTP request and print the response
//	go2web -s <search-term> # search and print the top 10 results
//	go2web -h               # show help
package main

import (
	"os"

	"github.com/raysh454/go2web/internal/app"
)

func main() {
	os.Exit(app.Main(os.Args[1:], os.Stdout, os.Stderr))
}
