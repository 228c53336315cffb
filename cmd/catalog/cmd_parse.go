package main

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/service"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// exerciseRecord is the file representation of a parsed exercise.
type exerciseRecord struct {
	Line                 int                    `yaml:"line" json:"line"`
	Name                 string                 `yaml:"name" json:"name"`
	Modality             string                 `yaml:"modality" json:"modality"`
	MovementPattern      string                 `yaml:"movementPattern" json:"movementPattern"`
	PrimaryMuscles       []string               `yaml:"primaryMuscles" json:"primaryMuscles"`
	SecondaryMuscles     []string               `yaml:"secondaryMuscles" json:"secondaryMuscles"`
	BodyRegion           domain.BodyRegion      `yaml:"bodyRegion" json:"bodyRegion"`
	EquipmentCategory    string                 `yaml:"equipmentCategory" json:"equipmentCategory"`
	EquipmentDetail      *string                `yaml:"equipmentDetail,omitempty" json:"equipmentDetail,omitempty"`
	Difficulty           string                 `yaml:"difficulty" json:"difficulty"`
	ImpactLevel          domain.ImpactLevel     `yaml:"impactLevel" json:"impactLevel"`
	Environment          domain.Environment     `yaml:"environment" json:"environment"`
	GoalTags             []string               `yaml:"goalTags" json:"goalTags"`
	LoggingOptions       []domain.LoggingOption `yaml:"loggingOptions" json:"loggingOptions"`
	Sets                 int                    `yaml:"sets" json:"sets"`
	Reps                 *int                   `yaml:"reps,omitempty" json:"reps,omitempty"`
	RepsUpper            *int                   `yaml:"repsUpper,omitempty" json:"repsUpper,omitempty"`
	DurationSeconds      *int                   `yaml:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	DurationUpperSeconds *int                   `yaml:"durationUpperSeconds,omitempty" json:"durationUpperSeconds,omitempty"`
	RestSeconds          int                    `yaml:"restSeconds" json:"restSeconds"`
	DefaultPrescription  string                 `yaml:"defaultPrescription" json:"defaultPrescription"`
}

type rejectionRecord struct {
	Line   int    `yaml:"line" json:"line"`
	Text   string `yaml:"text" json:"text"`
	Reason string `yaml:"reason" json:"reason"`
}

type parseReport struct {
	Accepted   int               `yaml:"accepted" json:"accepted"`
	Rejected   int               `yaml:"rejected" json:"rejected"`
	Exercises  []exerciseRecord  `yaml:"exercises" json:"exercises"`
	Rejections []rejectionRecord `yaml:"rejections" json:"rejections"`
}

func newExerciseRecord(line int, ex *domain.Exercise) exerciseRecord {
	return exerciseRecord{
		Line:                 line,
		Name:                 ex.Name,
		Modality:             ex.Modality,
		MovementPattern:      ex.MovementPattern,
		PrimaryMuscles:       ex.PrimaryMuscles,
		SecondaryMuscles:     ex.SecondaryMuscles,
		BodyRegion:           ex.BodyRegion,
		EquipmentCategory:    ex.EquipmentCategory,
		EquipmentDetail:      ex.EquipmentDetail,
		Difficulty:           ex.Difficulty,
		ImpactLevel:          ex.ImpactLevel,
		Environment:          ex.Environment,
		GoalTags:             ex.GoalTags,
		LoggingOptions:       ex.LoggingOptions,
		Sets:                 ex.Sets,
		Reps:                 ex.Reps,
		RepsUpper:            ex.RepsUpper,
		DurationSeconds:      ex.DurationSeconds,
		DurationUpperSeconds: ex.DurationUpperSeconds,
		RestSeconds:          ex.RestSeconds,
		DefaultPrescription:  ex.DefaultPrescription,
	}
}

func newParseReport(batch *service.BatchResult) parseReport {
	report := parseReport{
		Accepted:   batch.Accepted,
		Rejected:   batch.Rejected,
		Exercises:  make([]exerciseRecord, 0, batch.Accepted),
		Rejections: make([]rejectionRecord, 0, batch.Rejected),
	}
	for _, r := range batch.Results {
		if r.Accepted() {
			report.Exercises = append(report.Exercises, newExerciseRecord(r.LineNumber, r.Exercise))
			continue
		}
		report.Rejections = append(report.Rejections, rejectionRecord{Line: r.LineNumber, Text: r.Line, Reason: r.Err.Error()})
	}
	return report
}

func newParseCmd(app *cli) *cobra.Command {
	var (
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a catalog file and print the exercise records",
		Long: `Parses every non-blank, non-comment line of a catalog file.
Use "-" to read from standard input. Rejected lines are reported with their reason.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format %q (want yaml or json)", format)
			}

			text, err := readCatalog(cmd, args[0])
			if err != nil {
				return err
			}

			svc := service.NewCatalogService(nil, nil, nil, service.CatalogOptions{
				Workers:  app.cfg.Catalog.Workers,
				MaxLines: app.cfg.Catalog.MaxLines,
			}, app.logger)
			batch, err := svc.Preview(cmd.Context(), text)
			if err != nil {
				return err
			}
			app.logger.Debug("Catalog parsed",
				zap.String("source", args[0]),
				zap.Int("accepted", batch.Accepted),
				zap.Int("rejected", batch.Rejected),
			)

			if err := writeReport(cmd.OutOrStdout(), format, newParseReport(batch)); err != nil {
				return err
			}
			if strict && batch.Rejected > 0 {
				return fmt.Errorf("%w: %d of %d", errRejectedLines, batch.Rejected, len(batch.Results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero if any line is rejected")
	return cmd
}

// readCatalog reads the named file, or standard input for "-".
func readCatalog(cmd *cobra.Command, name string) (string, error) {
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(io.LimitReader(r, service.MaxCatalogBytes+1))
	if err != nil {
		return "", fmt.Errorf("read catalog: %w", err)
	}
	if len(raw) > service.MaxCatalogBytes {
		return "", fmt.Errorf("%w: more than %d bytes", service.ErrCatalogTooLarge, service.MaxCatalogBytes)
	}
	return string(raw), nil
}

func writeReport(w io.Writer, format string, report any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
