package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xela07ax/guia-juridico-web/internal/apiclient"
	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

var listingsFlags struct {
	listingType string
	status      string
	text        string
	token       string
}

// tokenViewer — зритель каталога из командной строки
type tokenViewer string

func (v tokenViewer) CurrentToken(context.Context) (string, bool) { return string(v), v != "" }
func (tokenViewer) HasAnyOf(context.Context, ...domain.Role) bool  { return false }

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Lists opportunities from the backend with derived statuses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		api := apiclient.New(cfg.API, &http.Client{}, nil, logger)
		norm := catalog.NewNormalizer(catalog.NewAssets(cfg.App.AssetURL), cfg.Location(), time.Now)
		svc := catalog.NewService(api, norm, logger)

		params := url.Values{}
		if listingsFlags.listingType != "" {
			params.Set("type", listingsFlags.listingType)
		}
		listings, err := svc.Query(cmd.Context(), tokenViewer(listingsFlags.token), params)
		if err != nil {
			return fmt.Errorf("list listings: %s", domain.UserMessage(err, err.Error()))
		}
		listings = catalog.Apply(listings, catalog.Filter{Text: listingsFlags.text, Status: listingsFlags.status})

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tTIPO\tTÍTULO\tEMPRESA")
		for _, l := range listings {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Status, l.Type, l.Title, l.Company)
		}
		return tw.Flush()
	},
}

func init() {
	listingsCmd.Flags().StringVar(&listingsFlags.listingType, "tipo", "", "backend-side type filter")
	listingsCmd.Flags().StringVar(&listingsFlags.status, "status", "", "status filter: Abertas, Em Breve, Encerradas")
	listingsCmd.Flags().StringVarP(&listingsFlags.text, "query", "q", "", "text filter over title, company, location")
	listingsCmd.Flags().StringVar(&listingsFlags.token, "token", "", "bearer token for the backend")
	rootCmd.AddCommand(listingsCmd)
}
