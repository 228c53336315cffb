package main

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/repository/mongo"
	"alcyxob/fitness-catalog/internal/service"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type importReport struct {
	ImportID   string            `yaml:"importId" json:"importId"`
	TotalLines int               `yaml:"totalLines" json:"totalLines"`
	Accepted   int               `yaml:"accepted" json:"accepted"`
	Rejections []rejectionRecord `yaml:"rejections" json:"rejections"`
}

func newImportReport(imp *domain.CatalogImport) importReport {
	report := importReport{
		ImportID:   imp.ID.Hex(),
		TotalLines: imp.TotalLines,
		Accepted:   imp.Accepted,
		Rejections: make([]rejectionRecord, len(imp.Rejected)),
	}
	for i, r := range imp.Rejected {
		report.Rejections[i] = rejectionRecord{Line: r.LineNumber, Text: r.Line, Reason: r.Reason}
	}
	return report
}

func newImportCmd(app *cli) *cobra.Command {
	var (
		importer string
		format   string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Parse a catalog file and store the accepted exercises",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importerID, err := primitive.ObjectIDFromHex(importer)
			if err != nil {
				return fmt.Errorf("--importer must be a user ObjectID hex: %w", err)
			}
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format %q (want yaml or json)", format)
			}

			text, err := readCatalog(cmd, args[0])
			if err != nil {
				return err
			}

			client, err := mongo.ConnectDB(app.cfg.Database.URI)
			if err != nil {
				return fmt.Errorf("connect mongodb: %w", err)
			}
			defer func() {
				if err := mongo.DisconnectDB(client); err != nil {
					app.logger.Error("Failed to disconnect MongoDB", zap.Error(err))
				}
			}()
			db := client.Database(app.cfg.Database.Name)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				return err
			}

			svc := service.NewCatalogService(
				mongo.NewMongoExerciseRepository(db),
				mongo.NewMongoCatalogImportRepository(db),
				nil,
				service.CatalogOptions{Workers: app.cfg.Catalog.Workers, MaxLines: app.cfg.Catalog.MaxLines},
				app.logger,
			)
			imp, err := svc.Import(ctx, service.ImportRequest{
				ImportedBy: importerID,
				Source:     domain.ImportSourceInline,
				Text:       text,
			})
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, newImportReport(imp))
		},
	}
	cmd.Flags().StringVar(&importer, "importer", "", "User ObjectID recorded as the importer")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Deadline for the whole import")
	_ = cmd.MarkFlagRequired("importer")
	return cmd
}
