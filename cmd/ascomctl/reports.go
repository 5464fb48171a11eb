package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/localnerve/ascom-demandas/internal/views"
)

func runReports(ctx context.Context, v *views.ReportsView, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("reports: missing subcommand")
	}

	fs := flag.NewFlagSet("reports "+args[0], flag.ContinueOnError)
	search := fs.String("q", "", "search text")
	demanda := fs.String("demanda", "", "demanda")
	solicitacao := fs.String("solicitacao", "", "solicitação")
	data := fs.String("data", "", "date DD/MM/AAAA")
	image := fs.String("image", "", "image file")
	removeImage := fs.Bool("remove-image", false, "remove the current image")
	pos, err := parseCommand(fs, args[1:])
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		if err := v.SetSearch(ctx, *search); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATA\tDEMANDA\tIMAGEM")
		for _, r := range v.State().Reports {
			img := ""
			if r.HasImage {
				img = "sim"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Data, truncate(r.Demanda, 60), img)
		}
		return w.Flush()

	case "show":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		if err := v.OpenPreview(ctx, id); err != nil {
			return err
		}
		r := v.State().Preview
		fmt.Printf("Data: %s\nDemanda: %s\nSolicitação: %s\nImagem: %t\n", r.Data, r.Demanda, r.Solicitacao, r.ImageData != "")
		return nil

	case "create", "update":
		if args[0] == "update" {
			id, err := onlyID(pos)
			if err != nil {
				return err
			}
			if err := v.OpenEdit(ctx, id); err != nil {
				return err
			}
		} else {
			v.OpenNew()
		}

		form := v.State().Form
		v.SetFields(or(*demanda, form.Demanda), or(*solicitacao, form.Solicitacao), or(*data, form.Data))
		if *removeImage {
			v.RemoveImage()
		}
		if *image != "" {
			u, err := readUpload(*image)
			if err != nil {
				return err
			}
			v.ChooseImage(*u, "")
		}
		return v.Submit(ctx)

	case "delete":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		return v.Delete(ctx, id)

	case "pdf":
		id, err := onlyID(pos)
		if err != nil {
			return err
		}
		return v.DownloadPDF(ctx, id)
	}
	return fmt.Errorf("reports: unknown subcommand %q", args[0])
}

func onlyID(pos []string) (string, error) {
	if len(pos) != 1 {
		return "", fmt.Errorf("expected exactly one ID")
	}
	return pos[0], nil
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
