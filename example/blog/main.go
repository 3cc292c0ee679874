// The blog example assembles an app from this directory's conventions and
// serves it. Run from example/blog:
//
//	go run .
//
// then open http://localhost:4000 for the playground.
package main

import (
	"github.com/charmbracelet/log"

	"github.com/SpaceK33z/nexus"
	_ "github.com/SpaceK33z/nexus/example/blog/posts"
)

func main() {
	app, err := nexus.New()
	if err != nil {
		log.Fatal("app creation failed", "err", err)
	}

	if err := app.StartServer(nexus.ServerOptions{}); err != nil {
		log.Fatal("server failed", "err", err)
	}
}
