package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openpmp/pmpq/gateway"
)

// submitCmd runs the patient stage only, printing the report link (or the
// gateway's embedded error) without fetching the report itself. Useful when
// testing credentials and patient matching against the gateway.
var submitCmd = &cobra.Command{
	Use:     "submit",
	Short:   "Submit a patient to the gateway and print the report link",
	Example: `pmpq submit --first John --last Doe --dob 1960-01-01 --zip 25301`,
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

		outcome := client.SubmitPatient(context.Background(), provider, patientFromFlags(cmd))
		if outcome.Kind != gateway.Success {
			fmt.Fprintln(os.Stderr, describeOutcome(outcome))
			os.Exit(1)
		}
		if viewable := outcome.Document.Find("ViewableReport"); viewable != nil {
			fmt.Println(viewable.Text())
			return
		}
		if errNode := outcome.Document.Find("Error"); errNode != nil {
			fmt.Fprintln(os.Stderr, "pmp error: "+errNode.FindText("Message"))
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "no viewable report in response")
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	registerPatientFlags(submitCmd)
}
