package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/ascom-demandas/internal/client"
	"github.com/localnerve/ascom-demandas/internal/views"
)

const usage = `
Command line front end for the ascom-demandas API.

Usage:

ascomctl [-api URL] [-o DIR] [-y] COMMAND [ARGS]

Global flags must come before the command. API defaults to $ASCOM_API_URL
or http://localhost:8001.

Commands:
  health
  reports list [-q TEXT]
  reports show ID
  reports create -demanda TEXT -solicitacao TEXT [-data DD/MM/AAAA] [-image FILE]
  reports update ID [-demanda TEXT] [-solicitacao TEXT] [-data DD/MM/AAAA] [-image FILE] [-remove-image]
  reports delete ID
  reports pdf ID
  demandas list [-month MM] [-year AAAA] [-status S] [-solicitante NOME] [-q TEXT]
  demandas show ID
  demandas create -solicitante NOME -demanda TEXT [-links L1,L2] [-files F1,F2]
  demandas update ID [-solicitante NOME] [-demanda TEXT] [-status S]
  demandas status ID STATUS
  demandas entrega ID [-links L1,L2] [-files F1,F2]
  demandas delete ID
  demandas whatsapp ID
  demandas months
  demandas pdf [-month MM -year AAAA]
  demandas file ID FILENAME
  solicitantes list
  solicitantes add NOME
`

func main() {
	opts, args, err := parseGlobal(os.Args[1:])
	if err != nil || len(args) == 0 {
		fmt.Fprint(os.Stderr, usage, "\n")
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(opts.apiURL, &http.Client{Timeout: 60 * time.Second})
	env := views.Env{
		Notifier:  stderrNotifier{},
		Clipboard: stdoutClipboard{},
		Download:  fileDownloader{dir: opts.outDir},
		Confirm:   stdinConfirm(opts.yes),
	}

	if err := run(ctx, api, env, args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, api *client.Client, env views.Env, args []string) error {
	switch args[0] {
	case "health":
		if err := api.Health(ctx); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	case "reports":
		return runReports(ctx, views.NewReportsView(api, env), args[1:])
	case "demandas":
		return runDemandas(ctx, views.NewDemandasView(api, env), api, env.Download, args[1:])
	case "solicitantes":
		return runSolicitantes(ctx, views.NewDemandasView(api, env), args[1:])
	case "help", "-h":
		fmt.Print(usage, "\n")
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}
