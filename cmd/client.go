package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openpmp/pmpq/gateway"
)

// newClient builds a gateway client from the resolved configuration.
func newClient() (*gateway.Client, error) {
	endpoint := gateway.LookupEndpoint(viper.GetString("endpoint"))
	url := endpoint.URL()
	if override := viper.GetString("endpoint-url"); override != "" {
		url = override
	}
	if url == "" {
		return nil, fmt.Errorf("no gateway URL: unknown endpoint %q and no endpoint-url given", viper.GetString("endpoint"))
	}
	cfg := gateway.Config{
		URL:                 url,
		Version:             viper.GetString("gateway-version"),
		Username:            viper.GetString("gateway-username"),
		Password:            viper.GetString("gateway-password"),
		CertificatePassword: viper.GetString("gateway-certificate-password"),
	}
	if path := viper.GetString("gateway-certificate"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read client certificate: %w", err)
		}
		cfg.Certificate = base64.StdEncoding.EncodeToString(data)
	}
	return gateway.NewClient(cfg), nil
}

// requestingProvider builds the requesting provider from the resolved
// configuration, validating the role against the recognised list.
func requestingProvider() (gateway.Provider, error) {
	role, ok := gateway.LookupRole(viper.GetString("provider-role"))
	if !ok {
		return gateway.Provider{}, fmt.Errorf("unrecognised provider role: %q", viper.GetString("provider-role"))
	}
	return gateway.Provider{
		FirstName:     viper.GetString("provider-first"),
		LastName:      viper.GetString("provider-last"),
		DEANumber:     viper.GetString("provider-dea"),
		NPINumber:     viper.GetString("provider-npi"),
		LicenseNumber: viper.GetString("provider-license"),
		LicenseType:   viper.GetString("provider-license-type"),
		Role:          role,
		LocationName:  viper.GetString("location-name"),
		StateCode:     viper.GetString("location-state"),
	}, nil
}

// registerPatientFlags adds the patient demographic flags shared by the
// lookup and submit commands.
func registerPatientFlags(cmd *cobra.Command) {
	cmd.Flags().String("first", "", "Patient's first name")
	cmd.Flags().String("last", "", "Patient's last name")
	cmd.Flags().String("dob", "", "Patient's date of birth (YYYY-MM-DD)")
	cmd.Flags().String("sex", "", "Patient's sex code")
	cmd.Flags().String("street", "", "Patient's street address")
	cmd.Flags().String("street2", "", "Second street address line")
	cmd.Flags().String("city", "", "Patient's city")
	cmd.Flags().String("state", "", "Patient's two-letter state code")
	cmd.Flags().String("zip", "", "Patient's zip code")
	cmd.Flags().String("phone", "", "Patient's phone number")
	cmd.MarkFlagRequired("first")
	cmd.MarkFlagRequired("last")
	cmd.MarkFlagRequired("dob")
}

func patientFromFlags(cmd *cobra.Command) gateway.Patient {
	flag := func(name string) string {
		return cmd.Flag(name).Value.String()
	}
	return gateway.Patient{
		FirstName:   flag("first"),
		LastName:    flag("last"),
		DateOfBirth: flag("dob"),
		SexCode:     flag("sex"),
		Street:      flag("street"),
		Street2:     flag("street2"),
		City:        flag("city"),
		StateCode:   flag("state"),
		ZipCode:     flag("zip"),
		Phone:       flag("phone"),
	}
}

// describeOutcome prints a non-success outcome for the command line,
// one distinct line per variant so scripts can match on the prefix.
func describeOutcome(o gateway.Outcome) string {
	switch o.Kind {
	case gateway.Success:
		return "success"
	case gateway.BadRequest:
		return "bad request: " + o.Message
	case gateway.Unauthorized:
		return "unauthorized: " + o.Message
	case gateway.NotFound:
		return "not found: " + o.Message
	case gateway.InternalServerError:
		return "gateway internal error: " + o.Message
	case gateway.CouldNotIdentifyUniquePatient:
		return "could not identify unique patient: " + o.Message
	case gateway.PMPError:
		return "pmp error: " + o.Message
	case gateway.Failure:
		return "failure: " + o.Message
	}
	return "unknown outcome"
}
