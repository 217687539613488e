package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/localnerve/ops-portal/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var writeFilename string
	flag.StringVar(&writeFilename, "w", "", "write the container environment to this .env file")
	flag.Parse()

	usage := `
Run a Postgres testcontainer for ops-portal and print the environment that points the
server at it (STORE_TYPE=postgres).

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-w OUT_ENV_FILE_PATH]

ENV_FILE_PATH: path to a .env file loaded before starting (e.g. TESTCONTAINERS_* settings)
OUT_ENV_FILE_PATH: path to write the DB_* environment to

example
  testcontainers -w .env.postgres
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx := context.Background()
	pg, err := testutil.StartPostgres(ctx)
	if err != nil {
		log.Fatalf("Failed to create test container: %v\n", err)
	}

	env := pg.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, env[k])
	}
	if writeFilename != "" {
		if err := godotenv.Write(env, writeFilename); err != nil {
			log.Printf("Failed to write %s: %v\n", writeFilename, err)
		} else {
			log.Printf("Wrote container environment to %s\n", writeFilename)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test container...\n", sig)
	if err := pg.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate test container: %v\n", err)
	}
}
