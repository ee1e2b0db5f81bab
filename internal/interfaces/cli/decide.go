package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/pkg/errors"
)

func newDecideCommand(opts *RootOptions) *cobra.Command {
	var passagesPath string

	cmd := &cobra.Command{
		Use:   "decide <query...>",
		Short: "Run the full decision pipeline over a claim query",
		Long: "decide understands the query, gathers policy passages, and synthesizes\n" +
			"the decision record. Passages come from --passages (JSON or YAML file)\n" +
			"or from the configured search backend; with neither, the decision is\n" +
			"made without documentary evidence.",
		Example: `  clearclaim decide "Hip replacement for a 50-year-old female with a 3-month-old standard policy"
  clearclaim decide --passages policy.yaml "Is knee surgery covered?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := getContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			text := strings.Join(args, " ")

			var rec *decision.Record
			if passagesPath != "" {
				passages, err := loadPassages(passagesPath)
				if err != nil {
					return err
				}
				u, err := cc.service.UnderstandQuery(ctx, text)
				if err != nil {
					return err
				}
				rec, err = cc.service.Decide(ctx, u, passages)
				if err != nil {
					return err
				}
			} else {
				rec, err = cc.service.Ask(ctx, text)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().StringVarP(&passagesPath, "passages", "p", "", "JSON or YAML file with policy passages")
	return cmd
}

// loadPassages reads a passage list from a JSON or YAML file. Entries need a
// source_id and text.
func loadPassages(path string) ([]decision.Passage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "reading passages file").WithDetail(path)
	}

	var passages []decision.Passage
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &passages)
	default:
		err = json.Unmarshal(raw, &passages)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "parsing passages file").WithDetail(path)
	}

	if len(passages) == 0 {
		return nil, errors.New(errors.ErrCodeEvidenceNoPassages,
			errors.DefaultMessageForCode(errors.ErrCodeEvidenceNoPassages)).WithDetail(path)
	}
	for i, p := range passages {
		if strings.TrimSpace(p.SourceID) == "" || strings.TrimSpace(p.Text) == "" {
			return nil, errors.New(errors.ErrCodeEvidenceMapping, "passage needs source_id and text").
				WithDetail(path + ": entry " + strconv.Itoa(i))
		}
	}
	return passages, nil
}
