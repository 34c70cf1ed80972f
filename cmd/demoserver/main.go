// Command demoserver serves fixture pages for trying go2web locally.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/go2web/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	base := fmt.Sprintf("http://localhost:%d", cfg.Port)
	fmt.Println("Try:")
	fmt.Printf("  go2web -u %s/\n", base)
	fmt.Printf("  go2web -u %s/json\n", base)
	fmt.Printf("  go2web -u %s/redirect/5\n", base)
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
