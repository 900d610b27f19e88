// Command demo serves every example route on port 3000
package main

import (
	"github.com/ridge/hellohttp/handlers"
	"github.com/ridge/hellohttp/server"
	"github.com/spf13/pflag"
)

// IPv4 only
const addr = "tcp4:0.0.0.0:3000"

var cors = pflag.Bool("cors", false, "Allow cross-origin requests")

func main() {
	pflag.Parse()
	server.Main(addr, handlers.Demo(), *cors)
}
