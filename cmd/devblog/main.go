// Command devblog is a terminal front end for the DevBlog content store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"devblog/internal/bootstrap"
	"devblog/internal/config"
)

var version = "dev"

func usage() {
	fmt.Println("Usage: devblog <command> [flags] [args]")
	fmt.Println()
	fmt.Println("Account:")
	fmt.Println("  signup --name N --email E --password P   Create an account and sign in")
	fmt.Println("  login --email E --password P              Sign in")
	fmt.Println("  logout                                    Sign out")
	fmt.Println("  whoami                                    Show the signed-in user")
	fmt.Println()
	fmt.Println("Posts:")
	fmt.Println("  post create --title T [--content C] [--category C] [--tags a,b] [--excerpt E] [--cover URL] [--publish]")
	fmt.Println("  post edit <id> [same flags as create]")
	fmt.Println("  post delete <id>")
	fmt.Println("  post show <slug>")
	fmt.Println("  browse [route]                            e.g. '#/home?search=css&page=2'")
	fmt.Println("  manage                                    List your posts")
	fmt.Println("  profile                                   List your bookmarks")
	fmt.Println()
	fmt.Println("Engagement:")
	fmt.Println("  like <slug|id>")
	fmt.Println("  bookmark <slug|id>")
	fmt.Println("  comment add <slug|id> --content C [--name N]")
	fmt.Println("  comment delete <slug|id> <comment-id>")
	fmt.Println()
	fmt.Println("Maintenance:")
	fmt.Println("  reset                                     Wipe everything and restore demo content")
	fmt.Println("  seed [--users N] [--posts N] [--seed S]   Add generated users and posts")
	fmt.Println("  metrics                                   Print counters for this run")
	fmt.Println("  serve [--addr :8080]                      Serve a read-only JSON API")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	if command == "help" || command == "-h" || command == "--help" {
		usage()
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Version: version})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	app := &cli{rt: rt, out: os.Stdout}
	runErr := app.run(ctx, command, args)

	if err := rt.Close(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
