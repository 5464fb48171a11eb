package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/localnerve/ascom-demandas/internal/client"
	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/views"
)

func runDemandas(ctx context.Context, v *views.DemandasView, api *client.Client, saver views.Downloader, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("demandas: missing subcommand")
	}

	fs := flag.NewFlagSet("demandas "+args[0], flag.ContinueOnError)
	month := fs.String("month", "", "month MM")
	year := fs.String("year", "", "year AAAA")
	status := fs.String("status", "", "status")
	solicitante := fs.String("solicitante", "", "solicitante")
	search := fs.String("q", "", "search text")
	demanda := fs.String("demanda", "", "demanda description")
	links := fs.String("links", "", "comma separated links")
	files := fs.String("files", "", "comma separated file paths")
	pos, err := parseCommand(fs, args[1:])
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		err := v.SetFilter(ctx, client.DemandaFilter{
			Month:       *month,
			Year:        *year,
			Status:      *status,
			Solicitante: *solicitante,
			Search:      *search,
		})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NÚMERO\tSTATUS\tSOLICITANTE\tDEMANDA\tID")
		for _, d := range v.State().Demandas {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Numero, d.Status, d.Solicitante, truncate(d.Demanda, 50), d.ID)
		}
		return w.Flush()

	case "show":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		if err := v.OpenDetail(ctx, id); err != nil {
			return err
		}
		printDemanda(v.State())
		return nil

	case "create":
		uploads, err := readUploads(*files)
		if err != nil {
			return err
		}
		v.OpenForm()
		v.SetForm(views.DemandaForm{Solicitante: *solicitante, Demanda: *demanda, Links: *links, Files: uploads})
		if err := v.Submit(ctx); err != nil {
			return err
		}
		v.CopyNumero()
		return nil

	case "update":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		patch := client.DemandaPatch{Solicitante: *solicitante, Demanda: *demanda, Status: *status}
		if patch == (client.DemandaPatch{}) {
			return fmt.Errorf("usage: demandas update ID [-solicitante NOME] [-demanda TEXT] [-status S]")
		}
		if err := api.UpdateDemanda(ctx, id, patch); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "✓ Demanda atualizada!")
		return v.Load(ctx)

	case "status":
		if len(pos) != 2 {
			return fmt.Errorf("usage: demandas status ID STATUS")
		}
		return v.SetStatus(ctx, pos[0], pos[1])

	case "entrega":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		uploads, err := readUploads(*files)
		if err != nil {
			return err
		}
		v.OpenEntrega(id)
		v.SetEntrega(*links, uploads)
		return v.SubmitEntrega(ctx)

	case "delete":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		return v.Delete(ctx, id)

	case "whatsapp":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		_, err = v.CopyWhatsApp(ctx, id)
		return err

	case "months":
		if err := v.LoadMonths(ctx); err != nil {
			return err
		}
		for _, m := range v.State().Months {
			fmt.Printf("%s\t%s\n", m, format.MonthKeyLong(m))
		}
		return nil

	case "pdf":
		if err := v.SetFilter(ctx, client.DemandaFilter{Month: *month, Year: *year}); err != nil {
			return err
		}
		return v.DownloadMonthlyPDF(ctx)

	case "file":
		// Fetch one stored attachment of a demanda by its file name
		if len(pos) != 2 {
			return fmt.Errorf("usage: demandas file ID FILENAME")
		}
		return downloadAttachment(ctx, v, api, saver, pos[0], pos[1])
	}
	return fmt.Errorf("demandas: unknown subcommand %q", args[0])
}

func printDemanda(st views.DemandasState) {
	d := st.Detail
	fmt.Printf("%s - %s\nStatus: %s\nCriada em: %s\n\n%s\n", d.Numero, d.Solicitante, d.Status, format.Date(d.CreatedAt), d.Demanda)
	if len(d.Referencias) > 0 {
		fmt.Println("\nReferências:")
		for _, a := range d.Referencias {
			fmt.Println("  - " + format.AttachmentLabel(a))
		}
	}
	if len(d.Entregas) > 0 {
		fmt.Println("\nEntregas:")
		for _, a := range d.Entregas {
			fmt.Println("  - " + format.AttachmentLabel(a))
		}
	}
}

func downloadAttachment(ctx context.Context, v *views.DemandasView, api *client.Client, saver views.Downloader, id, filename string) error {
	if err := v.OpenDetail(ctx, id); err != nil {
		return err
	}
	d := v.State().Detail
	for _, a := range append(d.Referencias, d.Entregas...) {
		if a.Blob != "" && strings.EqualFold(a.Filename, filename) {
			dl, err := api.DownloadFile(ctx, a)
			if err != nil {
				return err
			}
			return saver.Save(dl)
		}
	}
	return fmt.Errorf("no file named %q on demanda %s", filename, d.Numero)
}

func runSolicitantes(ctx context.Context, v *views.DemandasView, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("solicitantes: missing subcommand")
	}
	switch args[0] {
	case "list":
		if err := v.LoadSolicitantes(ctx); err != nil {
			return err
		}
		for _, s := range v.State().Solicitantes {
			fmt.Println(s.Nome)
		}
		return nil
	case "add":
		return v.AddSolicitante(ctx, strings.Join(args[1:], " "))
	}
	return fmt.Errorf("solicitantes: unknown subcommand %q", args[0])
}
