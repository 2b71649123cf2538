package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openpmp/pmpq/gateway"
)

// lookupCmd runs the full two-stage workflow: submit the patient, follow the
// report link, write out the rendered report.
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Submit a patient to the gateway and fetch the prescription report",
	Example: `pmpq lookup --first John --last Doe --dob 1960-01-01 --zip 25301
pmpq lookup --first John --last Doe --dob 1960-01-01 --phone 304-555-0188 --output report.html`,
	Run: func(cmd *cobra.Command, args []string) {
		provider, err := requestingProvider()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid provider configuration")
		}
		client, err := newClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create gateway client")
		}
		defer client.Close()

		outcome := client.SubmitPatientAndFetchReport(context.Background(), provider, patientFromFlags(cmd))
		if outcome.Kind != gateway.Success {
			fmt.Fprintln(os.Stderr, describeOutcome(outcome))
			os.Exit(1)
		}
		if title := outcome.Report.Title(); title != "" {
			log.Info().Str("title", title).Msg("report fetched")
		}
		out := os.Stdout
		if path := cmd.Flag("output").Value.String(); path != "" {
			f, err := os.Create(path)
			if err != nil {
				log.Fatal().Err(err).Msg("could not write report")
			}
			defer f.Close()
			out = f
		}
		fmt.Fprintln(out, outcome.Report.HTML())
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	registerPatientFlags(lookupCmd)
	lookupCmd.Flags().String("output", "", "File to write the report to (default stdout)")
}
