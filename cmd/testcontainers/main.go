package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/ascom-demandas/internal/database"
	"github.com/localnerve/ascom-demandas/internal/testsupport"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var dbType string
	flag.StringVar(&dbType, "db", "postgres", "database type: postgres, mysql or mariadb")
	var envFilename string
	flag.StringVar(&envFilename, "o", "", "path of the .env file to write")
	flag.Parse()

	usage := `
Start a throwaway database container for ascom-demandas and keep it running
until interrupted. The connection settings are printed and, with -o, written
to a .env file the server can load with ENV_FILE.

Usage:

testcontainers [-h] [-db postgres|mysql|mariadb] [-o ENV_FILE_PATH]

example
  testcontainers -db mysql -o ./container.env
  ENV_FILE=./container.env go run ./cmd/server
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	ctx := context.Background()
	container, err := testsupport.StartDatabase(ctx, dbType)
	if err != nil {
		log.Fatalf("Failed to start database container: %v\n", err)
	}

	db, err := container.Connect(ctx)
	if err != nil {
		container.Terminate(nil)
		log.Fatalf("Failed to prepare database: %v\n", err)
	}
	database.Close(db)

	env := container.Env()
	for _, key := range []string{"DB_TYPE", "DB_HOST", "DB_PORT", "DB_DATABASE", "DB_USER", "DB_PASSWORD"} {
		fmt.Printf("%s=%s\n", key, env[key])
	}
	if envFilename != "" {
		if err := godotenv.Write(env, envFilename); err != nil {
			container.Terminate(nil)
			log.Fatalf("Failed to write %s: %v\n", envFilename, err)
		}
		log.Printf("Wrote connection settings to %s\n", envFilename)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating database container...\n", sig)
	container.Terminate(nil)
}
