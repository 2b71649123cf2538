// Package cmd supports the command-line interface for the pmpq utility.
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pmpq",
	Short: "pmpq queries a prescription monitoring programme gateway",
	Long: `
pmpq submits a patient's demographics to a prescription monitoring programme
(PMP) gateway on behalf of a requesting provider and fetches the rendered
prescription report.

Credentials, the client certificate and the requesting provider's details are
read from flags, a configuration file or PMPQ_* environment variables.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		warnIfHTTPProxy()
		configureLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pmpq.yaml)")

	rootCmd.PersistentFlags().String("log", "", "Log file to use")
	viper.BindPFlag("log", rootCmd.PersistentFlags().Lookup("log"))
	rootCmd.PersistentFlags().Bool("log-json", false, "Write structured JSON logs rather than console output")
	viper.BindPFlag("log-json", rootCmd.PersistentFlags().Lookup("log-json"))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log each gateway exchange")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// gateway configuration
	rootCmd.PersistentFlags().String("endpoint", "T", "Gateway endpoint - (P)roduction, (T)esting or (D)evelopment")
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	rootCmd.PersistentFlags().String("endpoint-url", "", "URL for gateway endpoint (if different to default for P/T/D)")
	viper.BindPFlag("endpoint-url", rootCmd.PersistentFlags().Lookup("endpoint-url"))
	rootCmd.PersistentFlags().String("gateway-version", "", "Gateway API version segment (default v5)")
	viper.BindPFlag("gateway-version", rootCmd.PersistentFlags().Lookup("gateway-version"))
	rootCmd.PersistentFlags().String("gateway-username", "", "Username for the gateway")
	viper.BindPFlag("gateway-username", rootCmd.PersistentFlags().Lookup("gateway-username"))
	rootCmd.PersistentFlags().String("gateway-password", "", "Password for the gateway")
	viper.BindPFlag("gateway-password", rootCmd.PersistentFlags().Lookup("gateway-password"))
	rootCmd.PersistentFlags().String("gateway-certificate", "", "Path to the PKCS#12 client certificate for mutual TLS")
	viper.BindPFlag("gateway-certificate", rootCmd.PersistentFlags().Lookup("gateway-certificate"))
	rootCmd.PersistentFlags().String("gateway-certificate-password", "", "Password for the client certificate")
	viper.BindPFlag("gateway-certificate-password", rootCmd.PersistentFlags().Lookup("gateway-certificate-password"))

	// requesting provider configuration
	rootCmd.PersistentFlags().String("provider-first", "", "Requesting provider's first name")
	viper.BindPFlag("provider-first", rootCmd.PersistentFlags().Lookup("provider-first"))
	rootCmd.PersistentFlags().String("provider-last", "", "Requesting provider's last name")
	viper.BindPFlag("provider-last", rootCmd.PersistentFlags().Lookup("provider-last"))
	rootCmd.PersistentFlags().String("provider-role", "Physician", "Requesting provider's role")
	viper.BindPFlag("provider-role", rootCmd.PersistentFlags().Lookup("provider-role"))
	rootCmd.PersistentFlags().String("provider-dea", "", "Requesting provider's DEA number")
	viper.BindPFlag("provider-dea", rootCmd.PersistentFlags().Lookup("provider-dea"))
	rootCmd.PersistentFlags().String("provider-npi", "", "Requesting provider's NPI number")
	viper.BindPFlag("provider-npi", rootCmd.PersistentFlags().Lookup("provider-npi"))
	rootCmd.PersistentFlags().String("provider-license", "", "Requesting provider's professional licence number")
	viper.BindPFlag("provider-license", rootCmd.PersistentFlags().Lookup("provider-license"))
	rootCmd.PersistentFlags().String("provider-license-type", "", "Type of the professional licence")
	viper.BindPFlag("provider-license-type", rootCmd.PersistentFlags().Lookup("provider-license-type"))
	rootCmd.PersistentFlags().String("location-name", "", "Name of the requesting location")
	viper.BindPFlag("location-name", rootCmd.PersistentFlags().Lookup("location-name"))
	rootCmd.PersistentFlags().String("location-state", "", "Two-letter state code of the requesting location")
	viper.BindPFlag("location-state", rootCmd.PersistentFlags().Lookup("location-state"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".pmpq" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".pmpq")
	}

	viper.SetEnvPrefix("PMPQ")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func configureLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if viper.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	out := os.Stderr
	if logfile := viper.GetString("log"); logfile != "" {
		f, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			log.Fatal().Err(err).Str("file", logfile).Msg("couldn't open log file")
		}
		out = f
	}
	if viper.GetBool("log-json") || viper.GetString("log") != "" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
}

// Log some important configuration variables which can cause live service failings.
// Directly use an environmental variable lookup, rather than viper, as that looks for upper case versions of the requested variable
func warnIfHTTPProxy() {
	httpProxy, exists := os.LookupEnv("http_proxy") // give warning if proxy set, to help debug connection errors in live
	if exists {
		log.Warn().Msgf("http proxy set to %s", httpProxy)
	}
	httpsProxy, exists := os.LookupEnv("https_proxy")
	if exists {
		log.Warn().Msgf("https proxy set to %s", httpsProxy)
	}
}
